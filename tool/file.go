package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo describes a stored file for list_research_files output.
type FileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// FileStore confines all file operations to a root directory. Paths are
// cleaned, resolved and symlink-evaluated before the confinement check so
// neither `..` components nor symlink hops can escape the root.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns a store
// confined to it.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	evalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate storage root symlinks: %w", err)
	}

	return &FileStore{root: evalRoot}, nil
}

// Root returns the resolved absolute storage root.
func (s *FileStore) Root() string { return s.root }

// Resolve maps a user-supplied filename to an absolute path inside the root,
// or returns a PathTraversalError.
func (s *FileStore) Resolve(name string) (string, error) {
	if name == "" {
		return "", &PathTraversalError{Path: name}
	}

	clean := filepath.Clean(name)
	var abs string
	if filepath.IsAbs(clean) {
		abs = clean
	} else {
		abs = filepath.Join(s.root, clean)
	}
	abs = filepath.Clean(abs)

	// The target may not exist yet for writes; evaluate symlinks on the
	// nearest existing ancestor instead.
	eval, err := filepath.EvalSymlinks(abs)
	if err != nil {
		parent := filepath.Dir(abs)
		evalParent, parentErr := filepath.EvalSymlinks(parent)
		if parentErr != nil {
			return "", &PathTraversalError{Path: name}
		}
		eval = filepath.Join(evalParent, filepath.Base(abs))
	}

	if eval != s.root && !strings.HasPrefix(eval+string(filepath.Separator), s.root+string(filepath.Separator)) {
		return "", &PathTraversalError{Path: name}
	}
	return eval, nil
}

// Write stores content under the given filename inside the root.
func (s *FileStore) Write(name, content string) (string, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// Read loads the content of a stored file.
func (s *FileStore) Read(name string) (string, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List enumerates regular files directly under the root.
func (s *FileStore) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, FileInfo{
			Filename: entry.Name(),
			Size:     fi.Size(),
			Modified: fi.ModTime().Format(time.RFC3339),
		})
	}
	return infos, nil
}

// FileSaveTool persists agent findings to the confined file store.
type FileSaveTool struct {
	store *FileStore
}

var _ Tool = (*FileSaveTool)(nil)

// NewFileSaveTool creates a save_to_file tool backed by the given store.
func NewFileSaveTool(store *FileStore) *FileSaveTool {
	return &FileSaveTool{store: store}
}

// Name implements Tool.
func (t *FileSaveTool) Name() string { return "save_to_file" }

// Description implements Tool.
func (t *FileSaveTool) Description() string {
	return "Save research data or findings to a file for later reference."
}

// Parameters implements Tool.
func (t *FileSaveTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The content to save",
			},
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "The filename to save under",
			},
		},
		"required": []string{"content", "filename"},
	}
}

// Call implements Tool.
func (t *FileSaveTool) Call(_ context.Context, args map[string]interface{}) (string, error) {
	content, err := stringArg(t.Name(), args, "content")
	if err != nil {
		return "", err
	}
	filename, err := stringArg(t.Name(), args, "filename")
	if err != nil {
		return "", err
	}

	path, err := t.store.Write(filename, content)
	if err != nil {
		var traversal *PathTraversalError
		if errors.As(err, &traversal) {
			return "", NewToolError(t.Name(), traversal.Error(), CodeValidation)
		}
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	return fmt.Sprintf("Successfully saved to: %s", path), nil
}

// FileLoadTool reads previously saved findings from the confined store.
type FileLoadTool struct {
	store *FileStore
}

var _ Tool = (*FileLoadTool)(nil)

// NewFileLoadTool creates a load_from_file tool backed by the given store.
func NewFileLoadTool(store *FileStore) *FileLoadTool {
	return &FileLoadTool{store: store}
}

// Name implements Tool.
func (t *FileLoadTool) Name() string { return "load_from_file" }

// Description implements Tool.
func (t *FileLoadTool) Description() string {
	return "Load previously saved research data from a file."
}

// Parameters implements Tool.
func (t *FileLoadTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "The filename to load",
			},
		},
		"required": []string{"filename"},
	}
}

// Call implements Tool.
func (t *FileLoadTool) Call(_ context.Context, args map[string]interface{}) (string, error) {
	filename, err := stringArg(t.Name(), args, "filename")
	if err != nil {
		return "", err
	}

	content, err := t.store.Read(filename)
	if err != nil {
		var traversal *PathTraversalError
		if errors.As(err, &traversal) {
			return "", NewToolError(t.Name(), traversal.Error(), CodeValidation)
		}
		if os.IsNotExist(err) {
			return fmt.Sprintf("File not found: %s", filename), nil
		}
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	return content, nil
}

// FileListTool enumerates saved files as JSON.
type FileListTool struct {
	store *FileStore
}

var _ Tool = (*FileListTool)(nil)

// NewFileListTool creates a list_research_files tool backed by the given store.
func NewFileListTool(store *FileStore) *FileListTool {
	return &FileListTool{store: store}
}

// Name implements Tool.
func (t *FileListTool) Name() string { return "list_research_files" }

// Description implements Tool.
func (t *FileListTool) Description() string {
	return "List all saved research files."
}

// Parameters implements Tool.
func (t *FileListTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// Call implements Tool.
func (t *FileListTool) Call(_ context.Context, _ map[string]interface{}) (string, error) {
	files, err := t.store.List()
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	encoded, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	return string(encoded), nil
}
