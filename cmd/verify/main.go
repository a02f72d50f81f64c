// Command verify checks the consistency of the knowledge table, the crop
// vocabulary and the lexical phrases, optionally including the overrides
// stored in a knowledge database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/knowledge"
	"github.com/garyellow/agri-advisor-go/internal/lexical"
	"github.com/garyellow/agri-advisor-go/internal/storage"
)

var dbFlag = flag.String("db", os.Getenv("AGRI_KNOWLEDGE_DB"), "Knowledge database to verify with its overrides applied")

type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	flag.Parse()

	fmt.Println("🔍 Agri Advisor - Knowledge Consistency Verification")
	fmt.Println("====================================================")

	table := knowledge.Builtin()
	source := "built-in table"
	if *dbFlag != "" {
		t, err := loadStored(context.Background(), *dbFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Loading %s: %v\n", *dbFlag, err)
			os.Exit(1)
		}
		table = t
		source = *dbFlag
	}
	fmt.Printf("Source: %s\n", source)

	var results []verifyResult
	results = append(results, verifyCropKeys(table)...)
	results = append(results, verifyClarifying(table)...)
	results = append(results, verifyDefaults(table)...)
	results = append(results, verifyPhrases(lexical.DefaultPhrases())...)
	results = append(results, verifyExtractor(crop.NewExtractor(crop.DefaultThreshold))...)

	fmt.Println("\n📊 Verification Results:")
	fmt.Println("========================")

	failed := 0
	for _, r := range results {
		status := "✅"
		if !r.passed {
			status = "❌"
			failed++
		}
		fmt.Printf("%s %s: %s\n", status, r.name, r.message)
	}
	fmt.Printf("\n📈 Summary: %d passed, %d failed\n", len(results)-failed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func loadStored(ctx context.Context, path string) (knowledge.Table, error) {
	db, err := storage.New(ctx, path)
	if err != nil {
		return knowledge.Table{}, err
	}
	defer func() { _ = db.Close() }()
	return knowledge.Load(ctx, db)
}

// verifyCropKeys checks that per-crop advice only names vocabulary crops.
func verifyCropKeys(t knowledge.Table) []verifyResult {
	var results []verifyResult
	for _, l := range intent.All() {
		if !l.CropSpecific() {
			continue
		}
		var unknown, empty []string
		crops := t.Entry(l).Crops()
		for _, c := range crops {
			if !c.Valid() {
				unknown = append(unknown, string(c))
			}
			if text, _ := t.Entry(l).Lookup(c); strings.TrimSpace(text) == "" {
				empty = append(empty, string(c))
			}
		}
		r := verifyResult{name: fmt.Sprintf("Crop keys for %s", l), passed: len(crops) > 0 && len(unknown) == 0 && len(empty) == 0}
		switch {
		case len(crops) == 0:
			r.message = "no per-crop advice"
		case len(unknown) > 0:
			r.message = fmt.Sprintf("not in vocabulary: %v", unknown)
		case len(empty) > 0:
			r.message = fmt.Sprintf("empty advice: %v", empty)
		default:
			r.message = fmt.Sprintf("%d crops", len(crops))
		}
		results = append(results, r)
	}
	return results
}

// verifyClarifying checks that every crop-specific intent can ask for the crop.
func verifyClarifying(t knowledge.Table) []verifyResult {
	var missing []string
	for _, l := range intent.All() {
		if l.CropSpecific() {
			if _, ok := t.Clarifying(l); !ok {
				missing = append(missing, string(l))
			}
		}
	}
	if len(missing) > 0 {
		return []verifyResult{{name: "Clarifying questions", message: fmt.Sprintf("missing for %v", missing)}}
	}
	return []verifyResult{{name: "Clarifying questions", passed: true, message: "present for every crop-specific intent"}}
}

// verifyDefaults checks non-crop intents and the fixed replies.
func verifyDefaults(t knowledge.Table) []verifyResult {
	var missing []string
	for _, l := range intent.All() {
		if l.CropSpecific() || l.Control() {
			continue
		}
		if text, ok := t.Entry(l).Text(); !ok || strings.TrimSpace(text) == "" {
			missing = append(missing, string(l))
		}
	}
	results := []verifyResult{{name: "Default advice", passed: len(missing) == 0, message: "present for every general intent"}}
	if len(missing) > 0 {
		results[0].message = fmt.Sprintf("missing for %v", missing)
	}

	fixed := map[string]string{"greeting": t.Greeting(), "thanks": t.Thanks(), "fallback": t.Fallback()}
	for _, name := range []string{"greeting", "thanks", "fallback"} {
		text := fixed[name]
		results = append(results, verifyResult{
			name:    "Fixed reply " + name,
			passed:  strings.TrimSpace(text) != "",
			message: fmt.Sprintf("%d characters", len(text)),
		})
	}

	err := knowledge.Validate(t)
	r := verifyResult{name: "Table validation", passed: err == nil, message: "ok"}
	if err != nil {
		r.message = strings.ReplaceAll(err.Error(), "\n", "; ")
	}
	return append(results, r)
}

// verifyPhrases checks that the lexical strategy can score every candidate.
func verifyPhrases(p lexical.Phrases) []verifyResult {
	var missing []string
	total := 0
	for _, l := range intent.Candidates() {
		if len(p[l]) == 0 {
			missing = append(missing, string(l))
		}
		total += len(p[l])
	}
	if len(missing) > 0 {
		return []verifyResult{{name: "Lexical phrases", message: fmt.Sprintf("no phrases for %v", missing)}}
	}
	return []verifyResult{{name: "Lexical phrases", passed: true, message: fmt.Sprintf("%d phrases over %d intents", total, len(intent.Candidates()))}}
}

// verifyExtractor spot-checks crop extraction on known inputs.
func verifyExtractor(e *crop.Extractor) []verifyResult {
	cases := []struct {
		text string
		want crop.Name
		ok   bool
	}{
		{"Should I apply urea to my maize?", crop.Maize, true},
		{"wheat and maize rotation", crop.Maize, true},
		{"tomaot blight", crop.Tomato, true},
		{"xyz123", "", false},
		{"   ", "", false},
	}

	var failures []string
	for _, c := range cases {
		got, ok := e.Extract(c.text)
		if ok != c.ok || got != c.want {
			failures = append(failures, fmt.Sprintf("%q → %q", c.text, got))
		}
	}
	if len(failures) > 0 {
		return []verifyResult{{name: "Crop extraction", message: strings.Join(failures, ", ")}}
	}
	return []verifyResult{{name: "Crop extraction", passed: true, message: fmt.Sprintf("%d samples, %d vocabulary crops", len(cases), len(crop.Vocabulary()))}}
}
