// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Splinterfs-sum checksums a file split by split, reading every split
// through the same handler the splinterfs mount serves, without
// mounting anything. It prints one BLAKE3 digest per split, then the
// digest of the splits concatenated in index order next to the digest
// of the source itself.
//
// Exit codes:
//
//	0  the concatenated splits match the source
//	1  mismatch, or the source could not be read
//	2  bad arguments
//
// A mismatch is expected when the source needs more splits than
// --max-splits allows: the excess bytes are not served.
package main
