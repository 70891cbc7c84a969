// Package testutil provides deterministic embedder doubles for tests.
//
// This package is intended for use in tests only.
//
//	emb := testutil.NewKeywordEmbedder("alpha", "beta", "topic")
//	vec, _ := emb.Embed(ctx, `{"topic":"alpha"}`) // [1 0 1]
package testutil
