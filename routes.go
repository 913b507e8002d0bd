package main

import (
	"net/http"
	"os"

	"github.com/justinas/alice"
)

func (s *server) routes() {
	public := alice.New(s.logRequest)
	protected := public.Append(s.requireSession)

	r := s.router

	// Visitor widget.
	r.Handle("/chat/start", public.Then(s.StartChat())).Methods("POST")
	r.Handle("/chat/send", public.Then(s.SendMessage())).Methods("POST")
	r.Handle("/chat/messages/{clientId}", public.Then(s.ClientMessages())).Methods("GET")

	// Operator login.
	r.Handle("/login", public.Then(s.Login())).Methods("POST")
	r.Handle("/logout", public.Then(s.Logout())).Methods("POST")

	// Operator dashboard.
	r.Handle("/dashboard/messages", protected.Then(s.DashboardMessages())).Methods("GET")
	r.Handle("/dashboard/messages", protected.Then(s.DeleteAll())).Methods("DELETE")
	r.Handle("/dashboard/reply", protected.Then(s.OperatorReply())).Methods("POST")
	r.Handle("/dashboard/read", protected.Then(s.MarkRead())).Methods("POST")
	r.Handle("/dashboard/message/{id}", protected.Then(s.DeleteMessage())).Methods("DELETE")
	r.Handle("/dashboard/client/{clientId}", protected.Then(s.DeleteClient())).Methods("DELETE")

	// Static site (widget page, dashboard page) when a static dir is present.
	if info, err := os.Stat("static"); err == nil && info.IsDir() {
		r.PathPrefix("/").Handler(public.Then(http.FileServer(http.Dir("static"))))
	}
}
