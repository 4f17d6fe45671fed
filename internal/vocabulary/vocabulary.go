// Package vocabulary loads the dictionary, synonym table, navigation tree and
// access rules. Every source falls back to the defaults compiled into the binary.
package vocabulary

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/storesearch/internal/access"
	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/textnorm"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Paths points at optional override files. Empty means embedded default.
type Paths struct {
	Dictionary string
	Synonyms   string
	Nav        string
	Access     string
}

// Bundle is everything the query pipeline and the palette need at startup.
type Bundle struct {
	Dictionary domain.Dictionary
	Synonyms   domain.SynonymTable
	Nav        *domain.NavTree
	Access     *access.Rules
}

type dictionaryFile struct {
	Words []string `yaml:"words"`
}

type synonymsFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

type navFile struct {
	Nav []navNode `yaml:"nav"`
}

type navNode struct {
	Title    string    `yaml:"title"`
	Path     string    `yaml:"path"`
	Icon     string    `yaml:"icon"`
	Children []navNode `yaml:"children"`
}

// Load reads all four sources.
func Load(p Paths) (*Bundle, error) {
	dict, err := LoadDictionary(p.Dictionary)
	if err != nil {
		return nil, err
	}
	syn, err := LoadSynonyms(p.Synonyms)
	if err != nil {
		return nil, err
	}
	nav, err := LoadNav(p.Nav)
	if err != nil {
		return nil, err
	}
	rules, err := LoadAccess(p.Access)
	if err != nil {
		return nil, err
	}
	return &Bundle{Dictionary: dict, Synonyms: syn, Nav: nav, Access: rules}, nil
}

// LoadDictionary reads the word list. Words are normalized so that they
// compare equal to normalized query tokens.
func LoadDictionary(path string) (domain.Dictionary, error) {
	var f dictionaryFile
	if err := decode(path, "defaults/dictionary.yaml", &f); err != nil {
		return domain.Dictionary{}, fmt.Errorf("load dictionary: %w", err)
	}
	words := make([]string, 0, len(f.Words))
	for _, w := range f.Words {
		words = append(words, textnorm.Normalize(w))
	}
	return domain.NewDictionary(words), nil
}

// LoadSynonyms reads the synonym table. Keys and values are normalized.
func LoadSynonyms(path string) (domain.SynonymTable, error) {
	var f synonymsFile
	if err := decode(path, "defaults/synonyms.yaml", &f); err != nil {
		return domain.SynonymTable{}, fmt.Errorf("load synonyms: %w", err)
	}
	m := make(map[string][]string, len(f.Synonyms))
	for k, vs := range f.Synonyms {
		key := textnorm.Normalize(k)
		for _, v := range vs {
			m[key] = append(m[key], textnorm.Normalize(v))
		}
	}
	return domain.NewSynonymTable(m), nil
}

// LoadNav reads the menu tree.
func LoadNav(path string) (*domain.NavTree, error) {
	var f navFile
	if err := decode(path, "defaults/nav.yaml", &f); err != nil {
		return nil, fmt.Errorf("load nav: %w", err)
	}
	return &domain.NavTree{Roots: toNodes(f.Nav)}, nil
}

// LoadAccess reads the role rules.
func LoadAccess(path string) (*access.Rules, error) {
	data, err := read(path, "defaults/access.yaml")
	if err != nil {
		return nil, fmt.Errorf("load access rules: %w", err)
	}
	return access.Parse(data)
}

func toNodes(in []navNode) []domain.NavNode {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.NavNode, 0, len(in))
	for _, n := range in {
		out = append(out, domain.NavNode{
			Title:    n.Title,
			Path:     n.Path,
			Icon:     n.Icon,
			Children: toNodes(n.Children),
		})
	}
	return out
}

func decode(path, fallback string, v any) error {
	data, err := read(path, fallback)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", source(path, fallback), err)
	}
	return nil
}

func read(path, fallback string) ([]byte, error) {
	if path == "" {
		return defaults.ReadFile(fallback)
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided path
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func source(path, fallback string) string {
	if path == "" {
		return "embedded " + fallback
	}
	return path
}
