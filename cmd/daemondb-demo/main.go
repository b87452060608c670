// Demo program: builds a disk-backed B+ tree index and a TrieStore, runs a
// handful of inserts/removals through each, and prints the tree structure.
// Run: go run ./cmd/daemondb-demo [-db path] [-verbose]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"daemoncore/buffer"
	"daemoncore/index/bplustree"
	"daemoncore/storage/disk"
	"daemoncore/trie"
)

func main() {
	dbPath := flag.String("db", "daemoncore-demo.db", "path to the database file")
	verbose := flag.Bool("verbose", false, "trace buffer pool hits/misses/evictions")
	flag.Parse()

	if err := run(*dbPath, *verbose); err != nil {
		log.Fatalf("daemondb-demo: %v", err)
	}
}

func run(dbPath string, verbose bool) error {
	dm, err := disk.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open disk manager: %w", err)
	}
	defer dm.Close()

	bpm := buffer.NewManager(16, 2, dm, nil)
	bpm.SetVerbose(verbose)

	headerID, err := bplustree.CreateHeaderPage(bpm)
	if err != nil {
		return fmt.Errorf("create header page: %w", err)
	}

	tree := bplustree.New(bplustree.Config{
		Name:            "demo-index",
		HeaderPageID:    headerID,
		BPM:             bpm,
		Comparator:      bytes.Compare,
		LeafMaxSize:     4,
		InternalMaxSize: 4,
	})

	for i := 0; i < 30; i++ {
		k := []byte(fmt.Sprintf("k%03d", i))
		v := []byte(fmt.Sprintf("v%03d", i))
		if _, err := tree.Insert(k, v); err != nil {
			return fmt.Errorf("insert %s: %w", k, err)
		}
	}

	for i := 0; i < 30; i += 3 {
		k := []byte(fmt.Sprintf("k%03d", i))
		if _, err := tree.Remove(k); err != nil {
			return fmt.Errorf("remove %s: %w", k, err)
		}
	}

	fmt.Println(bpm.Describe())
	if err := tree.DrawBPlusTree(os.Stdout); err != nil {
		return fmt.Errorf("draw tree: %w", err)
	}

	store := trie.NewStore()
	trie.StorePut(store, "daemoncore", "storage engine")
	trie.StorePut(store, "daemon", "background process")
	if g, ok := trie.StoreGet[string](store, "daemoncore"); ok {
		fmt.Printf("trie: daemoncore -> %q\n", g.Value())
	}
	store.Remove("daemon")
	if _, ok := trie.StoreGet[string](store, "daemon"); !ok {
		fmt.Println("trie: daemon removed")
	}

	bpm.FlushAll()
	return nil
}
