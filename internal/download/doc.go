// Package download drives a complete run of the downloader.
//
// # Manager
//
// The Manager coordinates the whole process:
//
//  1. Fetch the chant listing and let the user pick a chant
//  2. Fetch the chant page and let the user pick an album
//  3. Extract the album playlist from the album page
//  4. Ask whether to download the entire playlist or which single track
//  5. Download the MP3 files into <downloads>/<album>/
//  6. Tag each file with ID3 metadata
//  7. Write a playlist file (optional)
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, download.Dependencies{}, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := manager.Run(ctx)
//	if download.IsQuit(err) {
//	    return
//	}
//
// Run is Select followed by Execute. Callers that show a progress view
// only while files are transferred call the two steps separately.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Current int           // finished tracks
//	    Total   int           // tracks in the run
//	}
//
// # Failures
//
// Fetch and extraction failures on listing pages end the run with an
// error. A failed track is reported and skipped; track numbers always
// follow playlist positions.
package download
