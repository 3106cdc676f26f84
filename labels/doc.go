// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package labels generates group names.

Two generators are provided:

  - Gemini: asks Google's Gemini API for a JSON array of themed team
    names in Simplified Chinese.
  - Static: "Group 1", "Group 2", ... with a configurable prefix.
    Used when no API key is configured and for any label the live
    generator fails to provide.

WithTimeout bounds a generator call:

	gen := labels.WithTimeout(gemini, 15*time.Second)
*/
package labels
