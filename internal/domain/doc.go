// Package domain models Queensland road crash location records.
//
// # Data Source
//
// Records come from the Queensland Government "Road crash locations" open
// data CSV (locations.csv). Each row is one crash with its GDA94 coordinates,
// casualty counts, and descriptive fields. The service only plots crashes
// whose severity is "Fatal".
//
// # Source Conventions
//
// Coordinates:
//
//	Crash_Latitude_GDA94 / Crash_Longitude_GDA94 are decimal degrees.
//	GDA94 differs from WGS-84 by well under a metre, so the values are
//	plotted on web tiles as-is.
//
// Severity ("Crash_Severity"):
//
//	One of "Fatal", "Hospitalisation", "Medical treatment", "Minor injury",
//	"Property damage only". Matching is exact and case-sensitive.
//
// Postal codes ("Loc_Post_Code"):
//
//	Held as text. Values such as "0800" must keep the leading zero, and some
//	rows carry non-numeric placeholders.
//
// Every column the service does not model is kept verbatim in
// [CrashRecord.Extra].
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of lat|lng|nature|type|postcode
// so the same crash keeps the same key across reloads. See [RecordID].
package domain
