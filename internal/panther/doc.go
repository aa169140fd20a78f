// Package panther provides the REST access client for one Panther instance.
//
// Every tool in the catalog goes through this client. The contract per call:
//
//   - Query parameters preserve multi-value fields as repeated parameters
//     (a filter with N values becomes N occurrences of the parameter name).
//   - Status codes in the caller-supplied expected set are soft outcomes:
//     the decoded body and status are returned without error so callers can
//     branch on endpoint-defined conditions (400 "bad filter combination",
//     404 "not found", 204 "accepted, no body").
//   - Any other status code is an *UnexpectedStatusError carrying the code
//     and raw body. It always propagates.
//   - Network failures are a *TransportError. The client never retries;
//     retry policy belongs to the caller if anywhere.
//
// Authentication is attached transparently via a TokenProvider; how the
// token is obtained is outside this package's concern.
package panther
