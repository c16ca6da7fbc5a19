// Package model defines the algebra shared by the solver, planner and verifier.
//
// A Family binds together a closed alphabet of arcospheres (tokens) and a
// closed list of recipes over multisets of those arcospheres. Every other
// package is parametrized by a *Family and never hard-codes an alphabet.
//
// # Sets
//
// A Set is a multiset stored as a fixed-width array of uint8 counts, one per
// token index. Sets are comparable values and are used directly as map keys
// by the search. Only the first Family.Dimension() slots are ever non-zero.
//
// Arithmetic never wraps: overflow or underflow panics with an
// *InvariantError, since it can only happen when an upstream subset check was
// skipped. Callers that cannot rule the situation out use the Checked*
// variants instead.
//
// # Paths
//
// A Path converts Count*Source + Catalysts into Count*Target + Catalysts by
// applying its recipes in order. A StagedPath groups those recipes into
// stages whose members only depend on tokens available before the stage.
//
// # Textual grammar
//
//	PATH   := SOURCE -> TARGET [xCOUNT] [+ CATALYSTS] => STAGE (| STAGE)*
//	STAGE  := RECIPE (// RECIPE)*
//	RECIPE := SET -> SET
//
// Display output is canonical and always parses back to an equal value.
package model
