// Package omdb resolves movie titles against the OMDb API and normalizes the
// answer into something the collection can store.
//
// OMDb reports "no such title" inside a successful JSON body
// ({"Response":"False","Error":"Movie not found!"}) and uses the literal "N/A"
// for unknown field values. Client.Resolve turns that into a tagged Result:
// Found with a cleaned Record, or NotFound with the reason OMDb gave. Network
// failures and undecodable bodies are returned as apperror.ErrTransport and
// apperror.ErrParse errors instead, so they can never be mistaken for a miss.
//
// Nothing is cached and nothing is retried: every call is one request.
package omdb
