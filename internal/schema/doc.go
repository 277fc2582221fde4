// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package schema holds the signature data model of an algorithm: its ordered
// variable declarations and relationship rules, as decoded from
// algorithms/<name>.json, together with the typed value handling every other
// package relies on.
//
// Scalar variables are represented as cty values. Null is structural: a
// variable without a value carries cty.NullVal of its declared type, never a
// zero value that happens to look empty.
package schema
