// Package testutil provides shared test doubles and fixtures.
//
//   - MockJobClient: testify mock of transcribe.JobClient
//   - ResultJSON / Item helpers: transcription result documents built in code
//   - WriteFile: temporary media files for upload tests
package testutil
