// Inspect a single page of a coredb page file as a hash-index header,
// directory, or bucket page.
// Usage: go run ./cmd/inspect_idx <db-file> <page-id> <header|directory|bucket>
package main

import (
	"fmt"
	"os"
	"strconv"

	"coredb/storage/disk/diskmanager"
	"coredb/storage/page"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <db-file> <page-id> <header|directory|bucket>\n", os.Args[0])
		os.Exit(1)
	}
	path := os.Args[1]
	pageIDInt, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid page id %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}
	kind := os.Args[3]

	dm, err := diskmanager.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %q: %v\n", path, err)
		os.Exit(1)
	}
	defer dm.Close()

	buf := make([]byte, page.Size)
	if err := dm.ReadPage(page.ID(pageIDInt), buf); err != nil {
		fmt.Fprintf(os.Stderr, "read page %d: %v\n", pageIDInt, err)
		os.Exit(1)
	}

	switch kind {
	case "header":
		var hp page.HeaderPage
		hp.Decode(buf)
		fmt.Printf("HeaderPage: maxDepth=%d\n", hp.MaxDepth)
	case "directory":
		var dp page.DirectoryPage
		dp.Decode(buf)
		fmt.Printf("DirectoryPage: size=%d\n", dp.Size())
		for i := uint32(0); i < dp.Size(); i++ {
			fmt.Printf("  [%d] bucket_page_id=%d local_depth=%d\n", i, dp.GetBucketPageID(i), dp.GetLocalDepth(i))
		}
	case "bucket":
		var bp page.BucketPage
		bp.Decode(buf)
		fmt.Printf("BucketPage: size=%d max_size=%d\n", bp.Size(), bp.MaxSize())
		for i := uint32(0); i < bp.Size(); i++ {
			fmt.Printf("  [%d] key=%x value=%+v\n", i, bp.KeyAt(i), bp.ValueAt(i))
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown page kind %q: want header, directory, or bucket\n", kind)
		os.Exit(1)
	}
}
