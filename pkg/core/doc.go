// Package core provides the fundamental types and interfaces for the
// screening engine.
//
// This package contains:
//   - WorkItem, ScreeningResult and Batch data models with GORM annotations
//   - Store interface defining the persistence contract
//   - Collaborator interfaces (Classifier, Scorer, Source, Exporter)
//   - Event types for pipeline monitoring
//   - Error types for item processing
//
// Most users should import the root package github.com/starORAIT/HRAgent
// instead of this package directly.
package core
