package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/researchmesh/core"
)

// MaxSlugLength caps the topic slug used in artifact filenames.
const MaxSlugLength = 30

// FileStore persists report artifacts as text files in a single directory.
// Filenames follow the pattern <kind>_<session>_<slug>.txt so reports from
// the same session sort together. All paths are confined to the root
// directory; names resolving outside it are rejected.
type FileStore struct {
	root string
}

var _ core.ReportStore = (*FileStore)(nil)

// NewFileStore creates the output directory if needed and returns a store
// confined to it.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute output directory.
func (s *FileStore) Root() string { return s.root }

// Save implements core.ReportStore. The returned name is the bare filename,
// usable with Load.
func (s *FileStore) Save(sessionID string, report core.Report) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.txt", report.Kind, sessionID, Slug(report.Topic))
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(report.Body), 0o644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return name, nil
}

// Load implements core.ReportStore.
func (s *FileStore) Load(name string) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load report: %w", err)
	}
	return string(data), nil
}

// List implements core.ReportStore. Names are returned sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) resolve(name string) (string, error) {
	path := filepath.Clean(filepath.Join(s.root, filepath.Clean(name)))
	if path != s.root && !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("report name %q escapes the output directory", name)
	}
	return path, nil
}

// Slug converts a topic into a filename-safe fragment of at most
// MaxSlugLength characters.
func Slug(topic string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "_")
	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "_")
	}
	return slug
}
