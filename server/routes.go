package server

func (s *Server) initRoutes() {
	// Session control
	s.RegisterRouteHandler("POST "+RouteCreateSession, ChainMiddleware(s.CreateSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteDeleteSession, ChainMiddleware(s.DeleteSessionHandler(), s.APIMiddleware()...))

	// Messaging
	s.RegisterRouteHandler("POST "+RouteSendMessage, ChainMiddleware(s.SendMessageHandler(), s.APIMiddleware()...))

	// Original-gateway aliases
	s.RegisterRouteHandler("POST "+RouteGenerateQR, ChainMiddleware(s.CreateSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSendMessageLegacy, ChainMiddleware(s.SendMessageHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteDisconnect, ChainMiddleware(s.DisconnectHandler(), s.APIMiddleware()...))

	// Health check stays unauthenticated
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.BaseMiddleware()...))
}
