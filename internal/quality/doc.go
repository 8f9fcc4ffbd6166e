// Package quality decides whether extracted text is English prose worth keeping.
//
// Two predicates run independently and both must pass:
//   - a statistical language filter over a Detector (lingua-go in production)
//   - a character and token Heuristic that rejects degenerate text a
//     detector can still be confident about, such as boilerplate or noise
//
// Their thresholds are configured separately; neither is tuned against the other.
package quality
