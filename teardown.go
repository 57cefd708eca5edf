package rpminspect

import "os"

// removeAll deletes an extraction root for [RunCtx.Free].
func removeAll(root string) error {
	return os.RemoveAll(root)
}
