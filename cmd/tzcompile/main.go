// Command tzcompile turns a local IANA tzdata source tree into a packed
// tzpack dataset, and can refresh that source tree from upstream.
package main

import "os"

func main() {
	os.Exit(run())
}
