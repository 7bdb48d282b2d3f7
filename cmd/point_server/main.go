package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/fmstephe/spatial-system/pkg/ptcsv"
	"github.com/fmstephe/spatial-system/pkg/quadtree"
)

var (
	filePathFlag = flag.String("path", "", "The path to a point csv file to serve")
	addrFlag     = flag.String("addr", ":8080", "The address to listen on")
)

func main() {
	flag.Parse()

	if *filePathFlag == "" {
		fmt.Printf("No -path flag provided. Nothing to serve.\n")
		return
	}

	f, err := os.Open(*filePathFlag)
	if err != nil {
		fmt.Printf("Error opening csv data %s\n", err)
		return
	}

	recordChan, err := ptcsv.ReadPointsAsync(f, 2)
	if err != nil {
		fmt.Printf("Error reading csv data %s\n", err)
		return
	}

	tree := fillTree(recordChan)
	fmt.Printf("Serving %d points on %s\n", tree.Size(), *addrFlag)

	handler := PointHandler{
		tree: tree,
	}

	http.HandleFunc("/survey", handler.HandleSurvey)
	http.HandleFunc("/knn", handler.HandleKnn)
	log.Fatal(http.ListenAndServe(*addrFlag, nil))
}

func fillTree(recordChan chan ptcsv.Record) *quadtree.Tree[ptcsv.Record] {
	tree := quadtree.New[ptcsv.Record](2)

	errCount := 0
	for record := range recordChan {
		if record.Error != nil {
			errCount++
			continue
		}
		if err := tree.Insert(record.Point, record); err != nil {
			errCount++
		}
	}
	if errCount > 0 {
		fmt.Printf("Skipped %d bad csv lines\n", errCount)
	}
	return tree
}
