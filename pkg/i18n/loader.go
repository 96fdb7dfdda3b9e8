package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithTranslationsFS loads translation catalogs from a filesystem.
// Files are laid out as root/<lang>/<namespace>.yaml (or .yml); the
// language comes from the directory name and the namespace from the
// file name:
//
//	locales/
//	  en/
//	    common.yaml
//	    validation.yaml
//	  de/
//	    common.yaml
//
//	//go:embed locales
//	var locales embed.FS
//
//	svc, err := i18n.New(
//	    i18n.WithLanguages("en", "de"),
//	    i18n.WithTranslationsFS(locales, "locales"),
//	)
func WithTranslationsFS(fsys fs.FS, root string) Option {
	return func(s *I18n) {
		if err := loadFS(s, fsys, root); err != nil {
			s.fail(err)
		}
	}
}

func loadFS(s *I18n, fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(p) {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		lang := path.Dir(rel)
		if lang == "." || strings.Contains(lang, "/") {
			// Only the flat <lang>/<namespace>.yaml layout is supported.
			return fmt.Errorf("%w: unexpected path %q", ErrInvalidFile, p)
		}
		namespace := strings.TrimSuffix(path.Base(rel), path.Ext(rel))

		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %q: %w", p, err)
		}
		var data map[string]any
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidFile, p, err)
		}
		s.merge(lang, namespace, data)
		return nil
	})
}

func isYAML(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
