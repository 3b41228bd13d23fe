package importresolver

import (
	"path"
	"strings"

	"github.com/jamescook/cataract/cataract"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Resolve walks sheet's @import tree to completion: fetching, recursively
// resolving, composing media, and splicing each import's rules into sheet
// at the position it was declared (spec.md §4.6). Soft failures (a single
// bad import) are aggregated via multierr and do not stop the others from
// resolving; Resolve returns the aggregate, or nil if every import
// resolved cleanly.
func Resolve(sheet *cataract.Stylesheet, opts Options) error {
	return resolveDepth(sheet, opts, 1, nil)
}

func resolveDepth(sheet *cataract.Stylesheet, opts Options, depth int, ancestors []string) error {
	if depth > opts.MaxDepth {
		return newImportError(ErrDepthExceeded, "", "exceeded import max_depth")
	}

	pending := make([]cataract.ImportStatement, len(sheet.Imports))
	copy(pending, sheet.Imports)

	var errs error
	var shift uint32

	for idx, imp := range pending {
		if imp.Resolved {
			continue
		}

		if err := validateURL(imp.URL, opts); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if contains(ancestors, imp.URL) {
			errs = multierr.Append(errs, newImportError(ErrCircularImport, imp.URL, "import cycle detected"))
			continue
		}

		ctx, cancel := opts.fetchContext()
		text, err := opts.Fetcher.Fetch(ctx, imp.URL, opts)
		cancel()
		if err != nil {
			opts.log().Warn("import fetch failed", zap.String("url", imp.URL), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}

		child, err := cataract.Parse(text, cataract.WithLogger(opts.log()))
		if err != nil {
			errs = multierr.Append(errs, newImportError(ErrParse, imp.URL, err.Error()))
			continue
		}

		childOpts := opts
		childOpts.BasePath, childOpts.BaseURI = deriveBase(imp.URL, opts)
		newAncestors := append(append([]string{}, ancestors...), imp.URL)
		if err := resolveDepth(child, childOpts, depth+1, newAncestors); err != nil {
			errs = multierr.Append(errs, err)
		}

		var parentMQ *cataract.MediaQuery
		if imp.MediaQueryID != nil {
			parentMQ = sheet.MediaQueryByID(*imp.MediaQueryID)
		}

		newRules := mergeChild(sheet, child, imp, parentMQ)

		pos := int(imp.ID) + int(shift)
		sheet.InsertRulesAt(pos, newRules)
		shift += uint32(len(newRules))

		for k := range sheet.Imports {
			if !sheet.Imports[k].Resolved && sheet.Imports[k].URL == imp.URL && sheet.Imports[k].ID == pending[idx].ID {
				sheet.Imports[k].Resolved = true
				break
			}
		}
	}

	sheet.Reindex()
	return errs
}

// mergeChild copies child's rules into sheet's ID space (fresh,
// non-colliding rule IDs and selector-list IDs reserved off sheet's
// current counters) and composes each rule's media per spec.md §4.6 step 5.
func mergeChild(sheet, child *cataract.Stylesheet, imp cataract.ImportStatement, parentMQ *cataract.MediaQuery) []cataract.Rule {
	mqOffset := make(map[uint32]uint32, len(child.MediaQueries))
	for _, mq := range child.MediaQueries {
		var newID uint32
		if parentMQ != nil {
			composedType, composedConditions := composeImportMedia(*parentMQ, mq)
			newID = sheet.AppendMediaQuery(composedType, composedConditions)
		} else {
			newID = sheet.AppendMediaQuery(mq.Type, mq.Conditions)
		}
		mqOffset[mq.ID] = newID
	}

	// sheet.Rules is always in a contiguously-tagged state relative to its
	// own length at this point: a fresh Parse assigns 0..n-1, and each
	// prior InsertRulesAt in this same pass extended that tag space by
	// exactly the number of rules it inserted. So the current length is a
	// tag base that cannot collide with any tag issued so far.
	base := uint32(len(sheet.Rules))
	newRules := make([]cataract.Rule, len(child.Rules))
	for i, r := range child.Rules {
		nr := r
		nr.ID = base + r.ID
		if r.MediaQueryID != nil {
			nw := mqOffset[*r.MediaQueryID]
			nr.MediaQueryID = &nw
		} else if parentMQ != nil {
			v := *imp.MediaQueryID
			nr.MediaQueryID = &v
		}
		nr.ParentRuleID = nil
		nr.SelectorListID = nil
		newRules[i] = nr
	}

	for listID, ruleIDs := range child.SelectorLists {
		remapped := make([]uint32, len(ruleIDs))
		for j, rid := range ruleIDs {
			remapped[j] = base + rid
		}
		newID := sheet.AppendSelectorList(remapped)
		for i, r := range child.Rules {
			if r.SelectorListID != nil && *r.SelectorListID == listID {
				v := newID
				newRules[i].SelectorListID = &v
			}
		}
	}

	return newRules
}

// composeImportMedia implements spec.md §4.6 step 5's media composition
// formula, distinct from the nested-@media composition in
// cataract/atrules.go's combineMediaText: the result has the parent's type
// and the child's conditions (or the child's type when it has none) as its
// conditions, so its Text() is "{parent_type} and
// {child_conditions_or_text}" with no extra parenthesization.
func composeImportMedia(parent cataract.MediaQuery, child cataract.MediaQuery) (string, *string) {
	childText := child.Type
	if child.Conditions != nil {
		childText = *child.Conditions
	}
	return parent.Type, &childText
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// deriveBase computes the new base_path/base_uri for an import's own
// nested @imports: the imported file's directory (spec.md §4.6 step 4).
func deriveBase(importedURL string, opts Options) (basePath, baseURI string) {
	scheme, rest := classifyURL(importedURL)
	if scheme == "http" || scheme == "https" {
		return opts.BasePath, importedURL
	}
	full := rest
	if opts.BasePath != "" && !strings.HasPrefix(full, "/") {
		full = path.Join(opts.BasePath, full)
	}
	return path.Dir(full), opts.BaseURI
}

// validateURL enforces the scheme and extension allowlists (spec.md §4.6
// step 1).
func validateURL(rawURL string, opts Options) error {
	scheme, rest := classifyURL(rawURL)
	if scheme == "" {
		scheme = "file"
	}
	if !opts.AllowedSchemes[scheme] {
		return newImportError(ErrDisallowedScheme, rawURL, "scheme "+scheme+" not allowed")
	}
	ext := strings.TrimPrefix(path.Ext(rest), ".")
	if !opts.Extensions[ext] {
		return newImportError(ErrDisallowedExtension, rawURL, "extension "+ext+" not allowed")
	}
	return nil
}
