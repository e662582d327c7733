package sqlast

import "sort"

// SlotKind classifies where a column name sits in the tree.
type SlotKind int

// Recognised column-bearing node shapes.
const (
	// SlotColumnRef is a column reference inside an expression.
	SlotColumnRef SlotKind = iota
	// SlotTarget is a column being assigned: UPDATE ... SET, INSERT column
	// lists and ON CONFLICT DO UPDATE SET.
	SlotTarget
	// SlotDefinition is a column being defined, altered, or renamed.
	SlotDefinition
	// SlotKey is a column named in a constraint, index, or USING list.
	SlotKey
)

func (k SlotKind) String() string {
	switch k {
	case SlotColumnRef:
		return "column_ref"
	case SlotTarget:
		return "target"
	case SlotDefinition:
		return "definition"
	case SlotKey:
		return "key"
	default:
		return "unknown"
	}
}

// Slot is one column name found in a tree. SetName writes through to the tree.
type Slot struct {
	Kind      SlotKind
	Statement string // enclosing statement kind, e.g. "select"
	Qualifier string // table or alias qualifier, "null" when absent
	Wildcard  bool   // a star reference such as t.*

	holder map[string]any
	field  string
}

// Name returns the column name held by the slot, or "*" for a wildcard.
func (s Slot) Name() string {
	if s.Wildcard {
		return "*"
	}
	name, _ := s.holder[s.field].(string)
	return name
}

// SetName replaces the column name. It is a no-op on wildcards.
func (s Slot) SetName(name string) {
	if s.Wildcard || s.holder == nil {
		return
	}
	s.holder[s.field] = name
}

// Mention formats the slot as "<statement>::<qualifier>::<name>".
func (s Slot) Mention() string {
	return s.Statement + "::" + s.Qualifier + "::" + s.Name()
}

// Mentions returns the mention strings of every slot in tree.
func Mentions(tree Tree) []string {
	var out []string
	Walk(tree, func(s Slot) {
		out = append(out, s.Mention())
	})
	return out
}

// Walk visits every column slot in tree depth-first. Arrays are visited in
// order and object keys in sorted order, so the visit order is stable.
// Nodes that match no known shape are treated as containers and descended
// into; recursion continues below a matched node as well.
func Walk(tree Tree, visit func(Slot)) {
	w := &walker{stmt: "unknown", visit: visit}
	w.walk(map[string]any(tree))
}

var statementKinds = map[string]string{
	"select_stmt":          "select",
	"insert_stmt":          "insert",
	"update_stmt":          "update",
	"delete_stmt":          "delete",
	"merge_stmt":           "merge",
	"create_stmt":          "create",
	"create_table_as_stmt": "create",
	"view_stmt":            "create",
	"index_stmt":           "create",
	"alter_table_stmt":     "alter",
	"rename_stmt":          "alter",
}

// alterColumnSubtypes are the ALTER TABLE commands whose name field is a
// column name.
var alterColumnSubtypes = map[string]bool{
	"AT_ColumnDefault":       true,
	"AT_CookedColumnDefault": true,
	"AT_DropNotNull":         true,
	"AT_SetNotNull":          true,
	"AT_SetExpression":       true,
	"AT_DropExpression":      true,
	"AT_SetStatistics":       true,
	"AT_SetOptions":          true,
	"AT_ResetOptions":        true,
	"AT_SetStorage":          true,
	"AT_SetCompression":      true,
	"AT_DropColumn":          true,
	"AT_AlterColumnType":     true,
	"AT_AddIdentity":         true,
	"AT_SetIdentity":         true,
	"AT_DropIdentity":        true,
}

type walker struct {
	stmt  string
	visit func(Slot)
}

func (w *walker) walk(node any) {
	switch n := node.(type) {
	case []any:
		for _, item := range n {
			w.walk(item)
		}
	case map[string]any:
		w.walkObject(n)
	}
}

func (w *walker) walkObject(obj map[string]any) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := obj[key]
		outer := w.stmt
		if kind, ok := statementKinds[key]; ok {
			w.stmt = kind
		}
		if body, ok := val.(map[string]any); ok {
			w.match(key, body)
		}
		w.walk(val)
		w.stmt = outer
	}
}

// match dispatches on the node key, which is the discriminator of the
// parse tree's tagged union.
func (w *walker) match(key string, body map[string]any) {
	switch key {
	case "column_ref":
		w.columnRef(body)
	case "update_stmt", "on_conflict_clause":
		w.targets(body["target_list"])
	case "insert_stmt":
		w.targets(body["cols"])
	case "column_def":
		w.field(SlotDefinition, body, "colname")
	case "constraint":
		w.names(body["keys"])
		w.names(body["fk_attrs"])
		w.names(body["pk_attrs"])
	case "index_elem":
		w.field(SlotKey, body, "name")
	case "alter_table_cmd":
		if sub, _ := body["subtype"].(string); alterColumnSubtypes[sub] {
			w.field(SlotDefinition, body, "name")
		}
	case "rename_stmt":
		if rt, _ := body["rename_type"].(string); rt == "OBJECT_COLUMN" {
			w.field(SlotDefinition, body, "subname")
			w.field(SlotDefinition, body, "newname")
		}
	case "join_expr":
		w.names(body["using_clause"])
	}
}

func (w *walker) columnRef(body map[string]any) {
	fields, _ := body["fields"].([]any)
	if len(fields) == 0 {
		return
	}

	qualifier := "null"
	if len(fields) >= 2 {
		if s, ok := stringNode(fields[len(fields)-2]); ok {
			if q, _ := s["sval"].(string); q != "" {
				qualifier = q
			}
		}
	}

	last, _ := fields[len(fields)-1].(map[string]any)
	if _, ok := last["a_star"]; ok {
		w.visit(Slot{Kind: SlotColumnRef, Statement: w.stmt, Qualifier: qualifier, Wildcard: true})
		return
	}
	if s, ok := stringNode(last); ok {
		w.visit(Slot{Kind: SlotColumnRef, Statement: w.stmt, Qualifier: qualifier, holder: s, field: "sval"})
	}
}

func (w *walker) targets(list any) {
	items, _ := list.([]any)
	for _, item := range items {
		m, _ := item.(map[string]any)
		rt, ok := m["res_target"].(map[string]any)
		if !ok {
			continue
		}
		w.field(SlotTarget, rt, "name")
	}
}

func (w *walker) names(list any) {
	items, _ := list.([]any)
	for _, item := range items {
		if s, ok := stringNode(item); ok {
			w.visit(Slot{Kind: SlotKey, Statement: w.stmt, Qualifier: "null", holder: s, field: "sval"})
		}
	}
}

func (w *walker) field(kind SlotKind, body map[string]any, name string) {
	if v, _ := body[name].(string); v == "" {
		return
	}
	w.visit(Slot{Kind: kind, Statement: w.stmt, Qualifier: "null", holder: body, field: name})
}

// stringNode unwraps a {"string": {"sval": ...}} node.
func stringNode(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	s, ok := m["string"].(map[string]any)
	return s, ok
}
