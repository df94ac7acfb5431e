// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package cmis defines the CMIS data model shared by every binding.
//
// The types in this package describe what travels over the wire: typed
// properties, type and property definitions, object data, access control
// lists, allowable actions, renditions, change events and repository
// descriptors. Converters in the internal packages encode and decode these
// values for the XML (AtomPub), Web Services and JSON (Browser) bindings.
//
// # Extensions
//
// Every data object embeds [ExtensionHolder]. Elements a converter does not
// understand are captured as [ExtensionElement] values, in document order,
// and written back out on encode. This keeps a 1.0 peer from losing 1.1
// content it cannot interpret.
//
// # Versions
//
// Encoders and decoders take an explicit [Version]. Constructs introduced
// in CMIS 1.1 are either dropped (optional capability flags such as
// [ActionCanCreateItem]) or rejected with [ErrVersionViolation] (structural
// constructs such as the item and secondary base types) when the target is
// CMIS 1.0.
//
// # Equality
//
// Each data-object kind has an explicit Equal function that compares every
// observable field. Tests and converters use these instead of reflection.
package cmis
