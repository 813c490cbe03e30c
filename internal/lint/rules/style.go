package rules

import (
	"regexp"
	"strings"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/walker"
)

var (
	themeVarPattern = regexp.MustCompile(`var\(\s*--([A-Za-z0-9_-]+)`)
	propertyPattern = regexp.MustCompile(`^(--[A-Za-z0-9_-]+|-?[a-z][a-z0-9-]*)$`)
)

// UnknownThemeToken reports var(--token) uses that no theme defines. Projects
// without themes are not checked.
func UnknownThemeToken() *lint.Rule {
	return &lint.Rule{
		Code:        "unknown theme token",
		Level:       schemas.LevelInfo,
		Category:    schemas.CategoryQuality,
		Description: "A style value uses a theme token that no theme defines.",
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			if ctx.Files == nil || len(ctx.Files.Themes) == 0 {
				return
			}
			tokens := walker.Memoize(ctx.Memo, "theme-tokens", func() nameSet {
				out := nameSet{}
				for _, th := range ctx.Files.Themes {
					for _, t := range th.Tokens() {
						out[t] = true
					}
				}
				return out
			})
			for n := range walker.Select(ctx, walker.KindStyleDeclaration) {
				decl := n.Style()
				for _, m := range themeVarPattern.FindAllStringSubmatch(decl.Value, -1) {
					if !tokens[m[1]] {
						report(n.Path, Details{Name: m[1]})
					}
				}
			}
		},
	}
}

// InvalidStyleDeclaration reports declarations with a malformed property
// name or an empty value.
func InvalidStyleDeclaration() *lint.Rule {
	return &lint.Rule{
		Code:        "invalid style declaration",
		Level:       schemas.LevelInfo,
		Category:    schemas.CategoryQuality,
		Description: "A style declaration has a malformed property or an empty value.",
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindStyleDeclaration) {
				decl := n.Style()
				if !propertyPattern.MatchString(decl.Property) || strings.TrimSpace(decl.Value) == "" {
					report(n.Path, Details{Name: decl.Property, Value: decl.Value}, FixDeleteStyleProperty)
				}
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{FixDeleteStyleProperty: omit},
	}
}
