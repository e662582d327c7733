package ui

import (
	"maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"colhash/internal/sqlast"
)

type editorButton struct {
	action string
	label  string
	title  string
}

var editorButtons = []editorButton{
	{actionHash, "Hash column names", "Given an SQL query, hash its column names"},
	{actionUnhash, "Unhash column names", "Given a hashed SQL query, restore its column names"},
	{actionParse, "Parse", "Given an SQL query, show its AST"},
	{actionModify, "Modify", "Given an SQL query, show its AST with hashed columns"},
	{actionRebuild, "Rebuild", "Given an AST object, print the query with restored columns"},
}

func editorPage(state editorState, signOut bool, csrf gomponents.Node) gomponents.Node {
	options := make([]gomponents.Node, 0, len(sqlast.Dialects()))
	for _, d := range sqlast.Dialects() {
		options = append(options, html.Option(
			html.Value(d.Name),
			gomponents.If(d.Name == state.Dialect, html.Selected()),
			gomponents.Text(d.Display),
		))
	}

	buttons := make([]gomponents.Node, 0, len(editorButtons))
	for _, b := range editorButtons {
		buttons = append(buttons, html.Button(
			html.Type("submit"),
			html.Name("action"),
			html.Value(b.action),
			html.Title(b.title),
			gomponents.Text(b.label),
		))
	}

	result := gomponents.Node(html.P(html.Class("muted"), gomponents.Text("Run an action to see its result.")))
	switch {
	case state.Error != "":
		result = html.P(html.Class("error"), gomponents.Attr("role", "alert"), gomponents.Text(state.Error))
	case state.Output != "":
		result = html.Pre(html.Code(html.ID("result"), gomponents.Text(state.Output)))
	}

	return page("SQL Editor",
		html.H1(gomponents.Text("SQL column hashing")),
		html.Form(
			html.Method("post"),
			html.Action("/ui/run"),
			csrf,
			html.Label(html.For("sql"), gomponents.Text("SQL (or an AST object for Rebuild)")),
			html.Textarea(
				html.ID("sql"),
				html.Name("sql"),
				html.Rows("12"),
				html.Required(),
				html.Placeholder("Enter SQL here"),
				gomponents.Text(state.SQL),
			),
			html.Div(html.Class("toolbar"),
				html.Label(html.For("dialect"), gomponents.Text("Database")),
				html.Select(html.ID("dialect"), html.Name("dialect"), gomponents.Group(options)),
			),
			html.Div(html.Class("toolbar"), gomponents.Group(buttons)),
		),
		html.Section(html.ID("output"), result),
		gomponents.If(signOut, html.Form(
			html.Method("post"),
			html.Action("/ui/logout"),
			csrf,
			html.Button(html.Type("submit"), gomponents.Text("Sign out")),
		)),
	)
}
