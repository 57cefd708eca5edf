// Package rpminspect is a build-artifact auditing library.
//
// Given a single "after" build, or a "before"-to-"after" pair of RPM builds,
// the inspection driver in the [inspect] package runs a battery of
// independent inspections over the packages and emits a merged,
// severity-ranked [Result] stream. This package holds the shared data model
// that every inspection reasons over: opened packages ([Pkg]), the files
// inside them ([File]), their pairing across builds ([Peer]), and the
// dependency rules extracted from their RPM headers ([DepRule]).
package rpminspect
