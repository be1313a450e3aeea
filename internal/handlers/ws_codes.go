// internal/handlers/ws_codes.go
package handlers

// BadSubprotocolError closes a session websocket whose client did not ask
// for the "solitaire" subprotocol. Other failures are refused with an HTTP
// status before the upgrade.
const BadSubprotocolError = 3000
