package ui

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func loginPage(errMsg string, csrf Node) Node {
	return page("Sign in",
		H1(Text("Sign in")),
		P(Class("muted"), Text("Paste a bearer token issued for this service.")),
		If(errMsg != "", P(Class("error"), Text("Error: "+errMsg))),
		Form(
			Method("post"),
			Action("/ui/login"),
			csrf,
			Label(For("token"), Text("Token")),
			Textarea(ID("token"), Name("token"), Rows("4"), Placeholder("Paste token here"), Required()),
			Div(Class("toolbar"), Button(Type("submit"), Text("Sign in"))),
		),
	)
}
