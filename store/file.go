package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/formstate/form"
)

const fileExt = ".yaml"

// FileStore keeps one YAML file per form under a directory. Writes go to a
// temporary file that is renamed into place, so readers never see a partial
// checkpoint.
type FileStore struct {
	root string
}

// NewFileStore creates the directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(formID string) string {
	return filepath.Join(s.root, formID+fileExt)
}

func (s *FileStore) Save(cp form.Checkpoint) error {
	if err := checkID(cp.FormID); err != nil {
		return err
	}

	data, err := yaml.Marshal(cp)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCodec, cp.FormID, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, cp.FormID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, cp.FormID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, cp.FormID, err)
	}

	if err := os.Rename(tmpName, s.path(cp.FormID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, cp.FormID, err)
	}
	return nil
}

func (s *FileStore) Load(formID string) (form.Checkpoint, error) {
	if err := checkID(formID); err != nil {
		return form.Checkpoint{}, err
	}

	data, err := os.ReadFile(s.path(formID))
	if err != nil {
		if os.IsNotExist(err) {
			return form.Checkpoint{}, fmt.Errorf("%w: %s", form.ErrCheckpointNotFound, formID)
		}
		return form.Checkpoint{}, fmt.Errorf("%w: %s: %v", ErrLoadFailed, formID, err)
	}

	var cp form.Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return form.Checkpoint{}, fmt.Errorf("%w: %s: %v", ErrCodec, formID, err)
	}
	cp.FormID = formID
	return cp, nil
}

func (s *FileStore) Delete(formID string) error {
	if err := checkID(formID); err != nil {
		return err
	}
	if err := os.Remove(s.path(formID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete failed: %s: %w", formID, err)
	}
	return nil
}

// List skips temporary and hidden files.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// checkID rejects IDs that cannot be a single file name.
func checkID(formID string) error {
	if formID == "" || formID == "." || formID == ".." || strings.ContainsAny(formID, `/\`) || strings.HasPrefix(formID, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, formID)
	}
	return nil
}
