// internal/ai/prompt.go
//
// Prompt assembly for document generation.
//
// The catalogue of document types and the exact prompt wording are
// product copy, tuned outside this repo; this file only owns the
// mechanics: pick the type's system prompt, append the formatting and
// target-language rules, and flatten the intake form into the user
// prompt.

package ai

import (
	"fmt"
	"sort"
	"strings"
)

// DocType describes one generatable document kind.
type DocType struct {
	Key    string
	Title  string
	System string
}

// docTypes is the deploy-time catalogue.  Unknown keys fall back to
// defaultDocType rather than erroring; the generator is forgiving.
var docTypes = map[string]DocType{
	"invoice":  {Key: "invoice", Title: "Invoice", System: "You draft professional invoices."},
	"contract": {Key: "contract", Title: "Freelance Contract", System: "You draft freelance service contracts."},
	"nda":      {Key: "nda", Title: "Non-Disclosure Agreement", System: "You draft mutual non-disclosure agreements."},
	"proposal": {Key: "proposal", Title: "Business Proposal", System: "You draft business proposals."},
	"quote":    {Key: "quote", Title: "Price Quote", System: "You draft itemized price quotes."},
}

var defaultDocType = DocType{
	Key:    "document",
	Title:  "Document",
	System: "You draft professional business documents.",
}

// languageNames maps locale codes to the language instruction.
var languageNames = map[string]string{
	"en": "English", "fr": "French", "de": "German",
	"es": "Spanish", "it": "Italian", "pt": "Portuguese",
}

// TypeFor returns the catalogue entry for key, falling back to the
// generic document type.
func TypeFor(key string) DocType {
	if dt, ok := docTypes[key]; ok {
		return dt
	}
	return defaultDocType
}

// Types lists the catalogue sorted by key, for the template picker.
func Types() []DocType {
	out := make([]DocType, 0, len(docTypes))
	for _, dt := range docTypes {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// BuildSystemPrompt combines the type's system prompt with the shared
// output rules and the target language.
func BuildSystemPrompt(dt DocType, loc string) string {
	lang, ok := languageNames[loc]
	if !ok {
		lang = languageNames["en"]
	}
	return dt.System + "\n\n" +
		"Rules:\n" +
		fmt.Sprintf("1. Write the entire document in %s.\n", lang) +
		"2. Use clean, professional Markdown structure with headings and bold text.\n" +
		"3. Ignore inappropriate or nonsensical inputs and produce a standard professional document.\n" +
		"4. Return only the document content, with no conversational framing."
}

// BuildUserPrompt flattens the intake form deterministically (sorted
// keys) so identical inputs produce identical prompts.
func BuildUserPrompt(dt DocType, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s from these details:\n", dt.Title)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, fields[k])
	}
	return b.String()
}
