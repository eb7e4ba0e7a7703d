// Package colmap maps tabular rows onto a property graph.
//
// A column mapping document names the entities a row produces (one vertex
// per entity key, identified by a column value) and the relationships
// between them. Relationships are the interesting part: for every row a
// RelationshipMapping looks up its source and target entities, asks its
// LabelDeriver for a label and, when both endpoints and a non-blank label
// exist, yields a RelationshipDef for the ingestion pipeline to store.
//
// A row that does not produce a relationship is normal. DefineRelationship
// reports that as ok == false, never as an error; errors are reserved for
// invalid configuration (ErrInvalidConfiguration, at construction time) and
// for failures inside a label deriver, which are returned unchanged.
//
// Compiled mappings hold no per-row state and are safe to share between
// goroutines processing different rows.
//
// Example document:
//
//	name: employees
//	header: true
//	entities:
//	  person:  {concept: person, id: name, properties: [{name: title}]}
//	  company: {concept: company, id: employer}
//	relationships:
//	  - {source: person, target: company, label: WORKS_FOR}
//	  - source: person
//	    target: company
//	    label: {kind: expr, expr: 'if .row.title == "CEO" then "LEADS" else empty end'}
package colmap
