package fetch

import (
	"context"
	"net/http"

	"github.com/lawvn/lawfetch/internal/model"
)

// Transport is the slice of the session transport a fetch borrows: the
// cookie-carrying client and the shared header decoration. Artifacts behind
// the paywall are only served to the authenticated cookie jar.
type Transport interface {
	Client() *http.Client
	Decorate(req *http.Request)
}

// Retriever fetches one located artifact into local storage.
type Retriever interface {
	Retrieve(ctx context.Context, item model.WorkItem, artifact model.LocatedArtifact) (model.RetrievalOutcome, error)
}
