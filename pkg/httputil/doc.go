// Package httputil provides the HTTP client used to render diagrams on a
// PlantUML server.
//
// [Client.Get] fetches a URL and returns the body. Transient failures
// (network errors, 5xx and 429 responses) are retried by [Retry] with
// exponential backoff; other responses fail at once:
//
//	c := httputil.NewClient(30 * time.Second)
//	png, err := c.Get(ctx, "https://www.plantuml.com/plantuml/png/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000")
//
// Failures carry the NETWORK_ERROR code of [errors]. Requests and responses
// are reported to the HTTP hooks of [observability].
//
// [errors]: github.com/matzehuels/reqdoc/pkg/errors
// [observability]: github.com/matzehuels/reqdoc/pkg/observability
package httputil
