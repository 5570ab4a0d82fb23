package i18n

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"

	"gopkg.in/yaml.v3"
)

// FSLoader reads YAML translation files from a file system, typically an
// embed.FS. Each file holds one or more top-level language keys:
//
//	pt-BR:
//	  banner:
//	    trial:
//	      one: "1 dia restante"
//	      other: "%{count} dias restantes"
//
// Files are merged in lexical order; later files override earlier keys.
type FSLoader struct {
	fsys    fs.FS
	pattern string
}

// NewFSLoader creates a loader for files matching pattern (path.Match syntax).
func NewFSLoader(fsys fs.FS, pattern string) *FSLoader {
	if pattern == "" {
		pattern = "*.yaml"
	}
	return &FSLoader{fsys: fsys, pattern: pattern}
}

func (l *FSLoader) Load(ctx context.Context) (map[string]map[string]any, error) {
	files, err := fs.Glob(l.fsys, l.pattern)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", ErrFailedToReadFile, l.pattern)
	}

	result := make(map[string]map[string]any)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := fs.ReadFile(l.fsys, name)
		if err != nil {
			return nil, errors.Join(ErrFailedToReadFile, err)
		}
		parsed, err := ParseYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		for lang, tree := range parsed {
			if result[lang] == nil {
				result[lang] = make(map[string]any)
			}
			merge(result[lang], tree)
		}
	}
	return result, nil
}

// ParseYAML decodes a translation document keyed by language code.
func ParseYAML(raw []byte) (map[string]map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToParseYAML, err)
	}
	out := make(map[string]map[string]any, len(doc))
	for lang, v := range doc {
		tree, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: language %q must map to an object, got %T", ErrFailedToParseYAML, lang, v)
		}
		out[lang] = tree
	}
	return out, nil
}

// MapLoader serves translations from memory.
type MapLoader map[string]map[string]any

func (m MapLoader) Load(context.Context) (map[string]map[string]any, error) {
	return maps.Clone(map[string]map[string]any(m)), nil
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		srcNode, srcIsMap := v.(map[string]any)
		dstNode, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			merge(dstNode, srcNode)
			continue
		}
		dst[k] = v
	}
}
