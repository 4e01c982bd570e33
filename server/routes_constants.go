package server

const (
	RouteCreateSession = "/sessions/create"
	RouteSendMessage   = "/messages/send"
	RouteDeleteSession = "/sessions/{id}"
	RouteHealth        = "/health"

	// Aliases kept for clients written against the original gateway.
	RouteGenerateQR        = "/generate-qr"
	RouteSendMessageLegacy = "/send-message"
	RouteDisconnect        = "/disconnect"
)
