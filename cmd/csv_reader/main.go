package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fmstephe/spatial-system/pkg/ptcsv"
)

var (
	filePathFlag = flag.String("path", "", "The path to a point csv file to read")
	dimsFlag     = flag.Int("dims", 2, "The number of coordinates per point")
)

func main() {
	flag.Parse()

	if *filePathFlag == "" {
		fmt.Printf("No -path flag provided. Nothing to read.\n")
		return
	}

	f, err := os.Open(*filePathFlag)
	if err != nil {
		fmt.Printf("Error opening csv data %s\n", err)
		return
	}

	recordChan, err := ptcsv.ReadPointsAsync(f, *dimsFlag)
	if err != nil {
		fmt.Printf("Error reading csv data %s\n", err)
		return
	}

	for record := range recordChan {
		if record.Error != nil {
			fmt.Printf("%d: %s\n", record.LineNum, record.Error)
		} else {
			fmt.Printf("%d: %v %q - %d\n", record.LineNum, record.Point, record.Name, record.Id)
		}
	}
}
