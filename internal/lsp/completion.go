package lsp

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"github.com/raven-lang/raven/internal/builtins"
	"github.com/raven-lang/raven/internal/lexer"
	"github.com/raven-lang/raven/internal/types"
)

// CompletionParams represents completion request parameters.
type CompletionParams struct {
	TextDocumentPositionParams
	Context *CompletionContext `json:"context,omitempty"`
}

type CompletionContext struct {
	TriggerKind      int    `json:"triggerKind"`
	TriggerCharacter string `json:"triggerCharacter,omitempty"`
}

// CompletionList represents a list of completion items.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type CompletionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const (
	completionKindMethod     = 2
	completionKindFunction   = 3
	completionKindField      = 5
	completionKindVariable   = 6
	completionKindClass      = 7
	completionKindModule     = 9
	completionKindEnum       = 13
	completionKindKeyword    = 14
	completionKindEnumMember = 20
)

func (s *Server) handleCompletion(msg *jsonrpcMessage) *jsonrpcMessage {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	s.mu.RLock()
	doc, ok := s.Documents[params.TextDocument.URI]
	s.mu.RUnlock()

	items := []CompletionItem{}
	if ok {
		items = getCompletions(doc, params.Position)
	}
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Result:  CompletionList{Items: items},
	}
}

func getCompletions(doc *Document, pos Position) []CompletionItem {
	offset := positionToOffset(doc.Content, pos)
	before := doc.Content[:offset]

	// drop the partial word being typed
	word := strings.TrimRightFunc(before, isIdentRune)
	switch {
	case strings.HasSuffix(word, "::"):
		return variantCompletions(doc, lastIdent(word[:len(word)-2]))
	case strings.HasSuffix(word, "."):
		return memberCompletions(doc, lastIdent(word[:len(word)-1]))
	}

	var items []CompletionItem
	if doc.Checker != nil {
		names := doc.Checker.Names()
		sort.Strings(names)
		for _, name := range names {
			typ, _ := doc.Checker.Lookup(name)
			items = append(items, CompletionItem{Label: name, Kind: kindOf(typ), Detail: detailOf(typ)})
		}
	}
	for _, f := range builtins.Funcs() {
		items = append(items, CompletionItem{Label: f.String(), Kind: completionKindFunction, Detail: "builtin"})
	}
	keywords := lexer.Keywords()
	sort.Strings(keywords)
	for _, kw := range keywords {
		items = append(items, CompletionItem{Label: kw, Kind: completionKindKeyword})
	}
	return items
}

func kindOf(typ types.Type) int {
	switch typ.(type) {
	case *types.Function:
		return completionKindFunction
	case *types.Struct:
		return completionKindClass
	case *types.Enum:
		return completionKindEnum
	case *types.Module:
		return completionKindModule
	}
	return completionKindVariable
}

func detailOf(typ types.Type) string {
	switch t := typ.(type) {
	case nil:
		return ""
	case *types.Struct:
		return "struct"
	case *types.Enum:
		return "enum"
	default:
		return t.String()
	}
}

// memberCompletions lists what may follow `receiver.`: module members,
// struct fields, or the native methods of the receiver's type.
func memberCompletions(doc *Document, receiver string) []CompletionItem {
	var typ types.Type
	if doc.Checker != nil && receiver != "" {
		typ, _ = doc.Checker.Lookup(receiver)
	}

	var items []CompletionItem
	switch t := typ.(type) {
	case *types.Module:
		for _, name := range sortedKeys(t.Funcs) {
			items = append(items, CompletionItem{Label: name, Kind: completionKindFunction, Detail: t.Funcs[name].String()})
		}
		for _, name := range sortedKeys(t.Vars) {
			items = append(items, CompletionItem{Label: name, Kind: completionKindVariable, Detail: t.Vars[name].String()})
		}
		return items
	case *types.Struct:
		for _, f := range t.Fields {
			items = append(items, CompletionItem{Label: f.Name, Kind: completionKindField, Detail: f.Type.String()})
		}
		return items
	case *types.Array:
		return methodItems(builtins.OnArray)
	case *types.Primitive:
		if t == types.TypeString {
			return methodItems(builtins.OnString)
		}
	}
	return methodItems(builtins.OnArray | builtins.OnString)
}

func methodItems(r builtins.Receiver) []CompletionItem {
	var items []CompletionItem
	for _, m := range builtins.Methods(r) {
		items = append(items, CompletionItem{Label: m.String(), Kind: completionKindMethod, Detail: describeMethod(m)})
	}
	return items
}

func variantCompletions(doc *Document, enum string) []CompletionItem {
	if doc.Checker == nil {
		return []CompletionItem{}
	}
	typ, _ := doc.Checker.Lookup(enum)
	e, ok := typ.(*types.Enum)
	if !ok {
		return []CompletionItem{}
	}
	items := make([]CompletionItem, 0, len(e.Variants))
	for _, v := range e.Variants {
		items = append(items, CompletionItem{Label: v, Kind: completionKindEnumMember, Detail: e.Name})
	}
	return items
}

// lastIdent returns the identifier that ends s.
func lastIdent(s string) string {
	trimmed := strings.TrimRightFunc(s, isIdentRune)
	return s[len(trimmed):]
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
