// Package toolbox ties the applets to access control and configuration.
// Both the TUI and the CLI go through a Manager so that local and SSH
// sessions get the same checks.
package toolbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/config"
	"github.com/johan-st/toolbox/internal/digest"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/vocab"
)

// ErrAccessDenied is returned when a user lacks the level an operation needs.
var ErrAccessDenied = errors.New("access denied")

// Manager serves applet operations for any number of sessions.
type Manager struct {
	resolver *access.Holder
	vocab    *vocab.Vocabulary
	genOpts  namegen.Options
	hashType digest.InputType
	fileRoot string
	mu       sync.RWMutex
}

// NewManager creates a manager from cfg.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{resolver: access.NewHolder(cfg.BuildResolver())}
	if err := m.apply(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// NewLocal creates a manager for the local terminal, where the user always
// has full access.
func NewLocal(cfg *config.Config) (*Manager, error) {
	m, err := NewManager(cfg)
	if err != nil {
		return nil, err
	}
	m.UpdateResolver(access.LocalResolver())
	return m, nil
}

// Reload applies a reloaded config: vocabulary, form defaults and access rules.
// On error the previous state is kept.
func (m *Manager) Reload(cfg *config.Config) error {
	if err := m.apply(cfg); err != nil {
		return err
	}
	m.UpdateResolver(cfg.BuildResolver())
	return nil
}

func (m *Manager) apply(cfg *config.Config) error {
	animals, adjectives := cfg.VocabularyPaths()
	v, err := vocab.Load(animals, adjectives)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}
	genOpts, err := cfg.GeneratorOptions()
	if err != nil {
		return fmt.Errorf("invalid generator defaults: %w", err)
	}
	hashType, err := cfg.HashInputType()
	if err != nil {
		return fmt.Errorf("invalid hash defaults: %w", err)
	}
	root, err := filepath.Abs(cfg.HashFileRoot())
	if err != nil {
		return fmt.Errorf("failed to resolve file root: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vocab = v
	m.genOpts = genOpts
	m.hashType = hashType
	m.fileRoot = root
	return nil
}

// UpdateResolver swaps the access resolver (called on config reload).
func (m *Manager) UpdateResolver(resolver *access.Resolver) {
	m.resolver.Set(resolver)
}

// IsAdmin reports whether user has admin rights.
func (m *Manager) IsAdmin(user *access.UserInfo) bool {
	return m.resolver.Get().IsAdmin(user)
}

// AppletInfo is an applet together with the caller's access level.
type AppletInfo struct {
	applet.Applet
	Group       string
	AccessLevel access.Level
}

// ListApplets returns the applets the user may use, in menu order.
func (m *Manager) ListApplets(user *access.UserInfo) []AppletInfo {
	var result []AppletInfo
	for _, g := range applet.Groups() {
		for _, a := range g.Applets {
			level := m.GetAccessLevel(user, a.Path)
			if level.CanUse() {
				result = append(result, AppletInfo{Applet: a, Group: g.Title, AccessLevel: level})
			}
		}
	}
	return result
}

// GetAccessLevel returns the access level for a user to an applet.
func (m *Manager) GetAccessLevel(user *access.UserInfo, appletPath string) access.Level {
	if _, ok := applet.Find(appletPath); !ok {
		return access.None
	}
	return m.resolver.Resolve(user, appletPath)
}

func (m *Manager) require(user *access.UserInfo, appletPath string, ok func(access.Level) bool, what string) error {
	level := m.GetAccessLevel(user, appletPath)
	if !ok(level) {
		return fmt.Errorf("%w: %s requires %s access to %s", ErrAccessDenied, user.DisplayName(), what, appletPath)
	}
	return nil
}

// NewGenerator returns a name generator with its own random source over the
// current vocabulary. Generators are not safe for concurrent use, so each
// session gets its own.
func (m *Manager) NewGenerator() *namegen.Generator {
	return namegen.New(vocab.NewSampler(m.Vocabulary(), nil))
}

// Vocabulary returns the current vocabulary.
func (m *Manager) Vocabulary() *vocab.Vocabulary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vocab
}

// GeneratorDefaults returns the options a new generator form starts with.
func (m *Manager) GeneratorDefaults() namegen.Options {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.genOpts
}

// HashDefault returns the input type a new hash form starts with.
func (m *Manager) HashDefault() digest.InputType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hashType
}

// FileRoot returns the absolute directory file browsing starts in.
func (m *Manager) FileRoot() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fileRoot
}

// Generate runs the name generator for user.
func (m *Manager) Generate(user *access.UserInfo, gen *namegen.Generator, opts namegen.Options) ([]string, error) {
	if err := m.require(user, applet.PathNameGenerator, access.Level.CanUse, "use"); err != nil {
		return nil, err
	}
	return gen.Generate(opts)
}

// Hash decodes input and digests it with every algorithm. It also returns
// the decoded size in bytes.
func (m *Manager) Hash(user *access.UserInfo, input string, t digest.InputType) ([]digest.Result, int64, error) {
	if err := m.require(user, applet.PathHashDigest, access.Level.CanUse, "use"); err != nil {
		return nil, 0, err
	}
	data, err := digest.Decode(input, t)
	if err != nil {
		return nil, 0, err
	}
	return digest.Compute(data), int64(len(data)), nil
}

// HashReader digests raw bytes from r, such as a client's stdin.
func (m *Manager) HashReader(user *access.UserInfo, r io.Reader) ([]digest.Result, int64, error) {
	if err := m.require(user, applet.PathHashDigest, access.Level.CanUse, "use"); err != nil {
		return nil, 0, err
	}
	return digest.ComputeReader(r)
}

// HashFile digests a file on the server in one streaming pass.
func (m *Manager) HashFile(user *access.UserInfo, path string) ([]digest.Result, int64, error) {
	f, _, err := m.OpenFile(user, path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return digest.ComputeReader(f)
}

// ReadFileBase64 reads a file and returns its contents Base64 encoded, the
// form the hash applet's File input carries.
func (m *Manager) ReadFileBase64(user *access.UserInfo, path string) (string, int64, error) {
	f, info, err := m.OpenFile(user, path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	encoded, err := digest.EncodeFile(f)
	if err != nil {
		return "", 0, err
	}
	return encoded, info.Size(), nil
}

// OpenFile opens a regular file for hashing. Remote users need the files
// level and may not leave the file root.
func (m *Manager) OpenFile(user *access.UserInfo, path string) (*os.File, os.FileInfo, error) {
	if err := m.require(user, applet.PathHashDigest, access.Level.CanReadFiles, "files"); err != nil {
		return nil, nil, err
	}

	resolved, err := m.resolvePath(user, path)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("not a regular file: %s", path)
	}
	return f, info, nil
}

// resolvePath makes path absolute against the file root and, for remote
// users, rejects anything outside it. Symlinks are resolved before the
// check so a link inside the root cannot point out of it.
func (m *Manager) resolvePath(user *access.UserInfo, path string) (string, error) {
	root := m.FileRoot()
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	if user != nil && user.Local {
		return path, nil
	}

	denied := fmt.Errorf("%w: %s is outside %s", ErrAccessDenied, path, root)
	if !within(root, path) {
		return "", denied
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	if !within(realRoot, resolved) {
		return "", denied
	}
	return resolved, nil
}

// Within reports whether path lies inside the file root once symlinks are
// resolved. Paths that do not exist are not within.
func (m *Manager) Within(path string) bool {
	root, err := filepath.EvalSymlinks(m.FileRoot())
	if err != nil {
		return false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	return within(root, resolved)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
