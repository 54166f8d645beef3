// Package repo collects facts about the codebase under analysis: git
// metadata, top-level layout and a language histogram. The facts feed
// the early pipeline phases' prompts so the model starts from ground
// truth instead of guessing.
package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// maxWalkFiles bounds the filesystem walk on pathological trees.
const maxWalkFiles = 50000

// skipDirs are directories that carry no signal for analysis.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"target":       true,
	"dist":         true,
	"build":        true,
}

// languageByExt maps common file extensions to language names.
var languageByExt = map[string]string{
	".go":    "Go",
	".rb":    "Ruby",
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".jsx":   "JavaScript",
	".java":  "Java",
	".kt":    "Kotlin",
	".rs":    "Rust",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".sql":   "SQL",
	".sh":    "Shell",
	".yaml":  "YAML",
	".yml":   "YAML",
	".tf":    "Terraform",
}

// Facts describes a codebase at a point in time.
type Facts struct {
	Root        string         `json:"root"`
	ProjectName string         `json:"project_name"`
	Branch      string         `json:"branch,omitempty"`
	HeadCommit  string         `json:"head_commit,omitempty"`
	Remotes     []string       `json:"remotes,omitempty"`
	TopLevel    []string       `json:"top_level"`
	Languages   map[string]int `json:"languages"`
	FileCount   int            `json:"file_count"`
}

// Collect gathers facts for the codebase at path. A directory that is
// not a git repository still yields layout and language facts; only the
// git fields stay empty.
func Collect(path string) (*Facts, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving codebase path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("codebase path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("codebase path %s is not a directory", abs)
	}

	facts := &Facts{
		Root:        abs,
		ProjectName: filepath.Base(abs),
		Languages:   make(map[string]int),
	}

	collectGitFacts(abs, facts)
	if err := collectTreeFacts(abs, facts); err != nil {
		return nil, err
	}
	return facts, nil
}

func collectGitFacts(root string, facts *Facts) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return
	}

	if head, err := repo.Head(); err == nil {
		facts.HeadCommit = head.Hash().String()
		if head.Name().IsBranch() {
			facts.Branch = head.Name().Short()
		}
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return
	}
	for _, remote := range remotes {
		urls := remote.Config().URLs
		if len(urls) > 0 {
			facts.Remotes = append(facts.Remotes, urls[0])
		}
	}
	sort.Strings(facts.Remotes)
}

func collectTreeFacts(root string, facts *Facts) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading codebase root: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		facts.TopLevel = append(facts.TopLevel, name)
	}
	sort.Strings(facts.TopLevel)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are not fatal
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if facts.FileCount >= maxWalkFiles {
			return filepath.SkipAll
		}
		facts.FileCount++
		if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
			facts.Languages[lang]++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking codebase: %w", err)
	}
	return nil
}

// PrimaryLanguages returns the language names ordered by file count,
// ties broken alphabetically.
func (f *Facts) PrimaryLanguages() []string {
	names := make([]string, 0, len(f.Languages))
	for name := range f.Languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if f.Languages[names[i]] != f.Languages[names[j]] {
			return f.Languages[names[i]] > f.Languages[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Summary renders the facts as a compact block for phase prompts.
func (f *Facts) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", f.ProjectName)
	fmt.Fprintf(&b, "Path: %s\n", f.Root)
	if f.Branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", f.Branch)
	}
	if len(f.Remotes) > 0 {
		fmt.Fprintf(&b, "Remotes: %s\n", strings.Join(f.Remotes, ", "))
	}
	if langs := f.PrimaryLanguages(); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}
	if len(f.TopLevel) > 0 {
		fmt.Fprintf(&b, "Top-level entries: %s\n", strings.Join(f.TopLevel, " "))
	}
	fmt.Fprintf(&b, "Files: %d\n", f.FileCount)
	return b.String()
}
