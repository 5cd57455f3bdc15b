// Package anonymizer holds the anonymization decision pipeline: records are
// flattened to dotted-path leaves, each leaf is classified as passthrough,
// mask or suppress against the job rules, masked values are replaced with a
// keyed SHA-256 token, and the surviving leaves are folded back into the
// original nested shape. Classification and hashing are pure functions over
// one field at a time, so callers may parallelize across records freely.
package anonymizer
