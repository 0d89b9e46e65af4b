// Package classify implements C3: mapping (path, size, magic bytes) to
// a SearchDecision, grounded on the teacher's isBinary/isHidden
// extension heuristics (pkg/enum/filesystem.go) and extended to the
// full extension-table + magic-byte-sniffing algorithm of spec §4.3.
package classify

import (
	"path/filepath"
	"strings"
)

// Mode is the scan mode a Search decision carries.
type Mode int

const (
	// FullText scans the whole file.
	FullText Mode = iota
	// Structured is FullText plus a hint that content is JSON/XML.
	Structured
	// Metadata scans only a prefix/metadata block.
	Metadata
	// Filename matches only the filename component.
	Filename
)

func (m Mode) String() string {
	switch m {
	case FullText:
		return "full-text"
	case Structured:
		return "structured"
	case Metadata:
		return "metadata"
	case Filename:
		return "filename"
	default:
		return "unknown"
	}
}

// FileClass is the internal category used before mode/size rules apply.
type FileClass int

const (
	AlwaysText FileClass = iota
	Conditional
	SkipByDefault
	NeverSearch
	unlisted // not in any table; goes through magic-byte sniffing
)

// Decision is C3's verdict for a path (spec §3 SearchDecision).
type Decision struct {
	Skip   bool
	Reason string // skip reason, or an informational note when !Skip
	Mode   Mode   // meaningful only when !Skip
	Limit  int64  // the size limit that was applied to reach this decision
}

func skip(reason string) Decision { return Decision{Skip: true, Reason: reason} }

func search(mode Mode, note string, limit int64) Decision {
	return Decision{Skip: false, Mode: mode, Reason: note, Limit: limit}
}

// SafetyPolicy overlays global size/category constraints (spec §4.3).
type SafetyPolicy int

const (
	SafetyDefault SafetyPolicy = iota
	SafetyConservative
	SafetyPerformance
)

// FileTypeStrategy overlays which categories are accepted at all.
type FileTypeStrategy int

const (
	StrategyDefault FileTypeStrategy = iota
	StrategyConservative
	StrategyPerformance
	StrategyComprehensive
)

// MagicHintFunc sniffs up to 1 KiB of content and returns a MIME type,
// e.g. "text/plain", "application/json", "application/octet-stream".
type MagicHintFunc func(head []byte) string

// Context bundles the extension tables and size limits used to
// classify a path (spec §3 ClassifierContext). The four extension
// sets must be pairwise disjoint.
type Context struct {
	AlwaysTextExts   map[string]bool
	ConditionalExts  map[string]bool
	SkipDefaultExts  map[string]bool
	NeverExts        map[string]bool
	SizeLimitByExt   map[string]int64
	ModeByExt        map[string]Mode
	MagicHint        MagicHintFunc
}

const (
	defaultAlwaysTextLimit  = 50 * 1024 * 1024  // 50 MiB
	defaultConditionalLimit = 10 * 1024 * 1024  // 10 MiB
	conservativeCeiling     = 10 * 1024 * 1024  // 10 MiB
	performanceCeiling      = 500 * 1024 * 1024 // 500 MiB
	magicSniffBytes         = 1024
)

// Default returns the built-in extension tables.
func Default() Context {
	return Context{
		AlwaysTextExts: set(
			".txt", ".md", ".markdown", ".go", ".py", ".js", ".ts", ".tsx", ".jsx",
			".java", ".c", ".h", ".hpp", ".cpp", ".cc", ".rs", ".rb", ".sh", ".bash",
			".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf", ".html", ".htm", ".css",
			".sql", ".proto", ".graphql", ".xml", ".csv", ".tsv", ".log", ".rst",
		),
		ConditionalExts: set(".pdf", ".zip", ".tar", ".gz", ".jpg", ".jpeg", ".png", ".gif", ".mp3", ".mp4", ".wav", ".avi", ".mov"),
		SkipDefaultExts: set(".lock", ".min.js", ".map", ".svg"),
		NeverExts:       set(".exe", ".dll", ".so", ".dylib", ".class", ".o", ".a", ".pyc", ".bin", ".woff", ".woff2", ".ttf"),
		SizeLimitByExt:  map[string]int64{},
		ModeByExt: map[string]Mode{
			".pdf":  Metadata,
			".zip":  Filename,
			".tar":  Filename,
			".gz":   Filename,
			".jpg":  Metadata,
			".jpeg": Metadata,
			".png":  Metadata,
			".gif":  Metadata,
			".mp3":  Metadata,
			".mp4":  Metadata,
			".wav":  Metadata,
			".avi":  Metadata,
			".mov":  Metadata,
		},
		MagicHint: DetectMIME,
	}
}

func set(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// Ext returns the lowercased effective extension for path. For dotted
// compounds such as "archive.tar.gz" this is the last segment (".gz"),
// matching filepath.Ext's own behavior.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func classOf(ctx Context, ext string) FileClass {
	switch {
	case ctx.NeverExts[ext]:
		return NeverSearch
	case ctx.AlwaysTextExts[ext]:
		return AlwaysText
	case ctx.ConditionalExts[ext]:
		return Conditional
	case ctx.SkipDefaultExts[ext]:
		return SkipByDefault
	default:
		return unlisted
	}
}

// policyOverlay describes the ceiling and allowed-class restriction a
// policy/strategy imposes; active=false means "no restriction, use
// the base algorithm unchanged".
type policyOverlay struct {
	active    bool
	ceiling   int64
	promoteTo map[FileClass]FileClass // class -> class it's treated as
	allowed   map[FileClass]bool      // nil means "all classes in promoteTo domain are fine"
}

func safetyOverlay(p SafetyPolicy) policyOverlay {
	switch p {
	case SafetyConservative:
		return policyOverlay{
			active:  true,
			ceiling: conservativeCeiling,
			allowed: map[FileClass]bool{AlwaysText: true},
		}
	case SafetyPerformance:
		return policyOverlay{
			active:    true,
			ceiling:   performanceCeiling,
			promoteTo: map[FileClass]FileClass{Conditional: AlwaysText},
		}
	default:
		return policyOverlay{}
	}
}

func strategyOverlay(s FileTypeStrategy) policyOverlay {
	switch s {
	case StrategyConservative:
		return policyOverlay{active: true, allowed: map[FileClass]bool{AlwaysText: true}}
	case StrategyPerformance:
		return policyOverlay{active: true, allowed: map[FileClass]bool{AlwaysText: true, Conditional: true}}
	case StrategyComprehensive:
		return policyOverlay{
			active:    true,
			promoteTo: map[FileClass]FileClass{SkipByDefault: AlwaysText, unlisted: AlwaysText, Conditional: AlwaysText},
		}
	default:
		return policyOverlay{}
	}
}

// Classify implements the C3 algorithm of spec §4.3, including the
// safety-policy and file-type-strategy overlays. It is pure: it only
// performs the bounded magic-byte read (via readHead), never mutates
// filesystem state, and identical inputs always yield the same
// Decision (spec §8 P9).
func Classify(path string, size int64, ctx Context, safety SafetyPolicy, strategy FileTypeStrategy, readHead func(n int) ([]byte, error)) Decision {
	ext := Ext(path)
	class := classOf(ctx, ext)

	if class == NeverSearch {
		return skip("never-search: " + ext)
	}

	so := safetyOverlay(safety)
	to := strategyOverlay(strategy)

	effectiveClass := class
	if so.promoteTo != nil {
		if promoted, ok := so.promoteTo[effectiveClass]; ok {
			effectiveClass = promoted
		}
	}
	if to.promoteTo != nil {
		if promoted, ok := to.promoteTo[effectiveClass]; ok {
			effectiveClass = promoted
		}
	}

	if so.active && so.allowed != nil && !so.allowed[effectiveClass] {
		return skip("refused by safety policy")
	}
	if to.active && to.allowed != nil && !to.allowed[effectiveClass] {
		return skip("refused by file-type strategy")
	}

	ceiling := int64(0)
	if so.active && so.ceiling > 0 {
		ceiling = so.ceiling
	}
	if to.active && to.ceiling > 0 && (ceiling == 0 || to.ceiling < ceiling) {
		ceiling = to.ceiling
	}
	if ceiling > 0 && size > ceiling {
		return skip("too large for policy ceiling")
	}

	switch effectiveClass {
	case AlwaysText:
		limit := ctx.SizeLimitByExt[ext]
		if limit <= 0 {
			limit = defaultAlwaysTextLimit
		}
		if ceiling > limit {
			limit = ceiling
		}
		if size > limit {
			return skip("too large")
		}
		return search(FullText, "", limit)

	case Conditional:
		limit := ctx.SizeLimitByExt[ext]
		if limit <= 0 {
			limit = defaultConditionalLimit
		}
		if size > limit {
			return skip("too large")
		}
		mode := ctx.ModeByExt[ext]
		return search(mode, "conditional: "+ext, limit)

	case SkipByDefault:
		return skip("skip by default: " + ext)

	default: // unlisted: magic-byte classification
		return classifyByMagic(path, readHead, ctx.MagicHint)
	}
}

func classifyByMagic(path string, readHead func(n int) ([]byte, error), hint MagicHintFunc) Decision {
	head, err := readHead(magicSniffBytes)
	if err != nil || len(head) == 0 {
		return skip("unreadable")
	}

	mime := ""
	if hint != nil {
		mime = hint(head)
	}

	switch {
	case strings.HasPrefix(mime, "text/"):
		return search(FullText, "magic: "+mime, 0)
	case mime == "application/json" || mime == "application/xml":
		return search(Structured, "magic: "+mime, 0)
	case mime == "application/pdf":
		return search(Metadata, "conditional: pdf (magic)", 0)
	case mime == "application/zip" || mime == "application/x-tar":
		return search(Filename, "conditional: zip (magic)", 0)
	case strings.HasPrefix(mime, "image/"), strings.HasPrefix(mime, "video/"), strings.HasPrefix(mime, "audio/"):
		return search(Metadata, "conditional: media (magic)", 0)
	default:
		if lowNullRatio(head) {
			return search(FullText, "magic: octet-stream, low null ratio", 0)
		}
		return skip("binary")
	}
}

// lowNullRatio reports whether head contains fewer than 10% null bytes.
func lowNullRatio(head []byte) bool {
	if len(head) == 0 {
		return true
	}
	nulls := 0
	for _, b := range head {
		if b == 0 {
			nulls++
		}
	}
	return float64(nulls)/float64(len(head)) < 0.10
}
