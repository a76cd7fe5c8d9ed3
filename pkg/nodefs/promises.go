package nodefs

// Promises holds the promise forms of the [FS] operations, the equivalent
// of fs.promises. Obtain it with [FS.Promises].
//
// Each method validates its arguments immediately. Malformed arguments
// produce an already rejected [Promise]; everything else runs on the FS
// loop and settles there. Callbacks are not accepted.
type Promises struct {
	f *FS
}
