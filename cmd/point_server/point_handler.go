package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fmstephe/spatial-system/pkg/ptcsv"
	"github.com/fmstephe/spatial-system/pkg/quadtree"
)

var (
	startArray = []byte("[")
	endArray   = []byte("]")
	comma      = []byte(",")
)

type PointHandler struct {
	tree *quadtree.Tree[ptcsv.Record]
}

// Serves /survey?lx=&rx=&ty=&by= as a JSON array of the records lying
// inside the window
func (s *PointHandler) HandleSurvey(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lx, err := formFloat(r, "lx")
	if err != nil {
		fmt.Printf("lx %s\n", err)
		return
	}
	rx, err := formFloat(r, "rx")
	if err != nil {
		fmt.Printf("rx %s\n", err)
		return
	}
	ty, err := formFloat(r, "ty")
	if err != nil {
		fmt.Printf("ty %s\n", err)
		return
	}
	by, err := formFloat(r, "by")
	if err != nil {
		fmt.Printf("by %s\n", err)
		return
	}

	w.Write(startArray)
	first := true
	s.tree.Survey([]float64{lx, by}, []float64{rx, ty}, func(p []float64, record ptcsv.Record) bool {
		if !first {
			w.Write(comma)
		}
		first = false
		writeRecord(w, record)
		return true
	})
	w.Write(endArray)
}

// Serves /knn?x=&y=&k= as a JSON array of the k records nearest to (x,y)
func (s *PointHandler) HandleKnn(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	x, err := formFloat(r, "x")
	if err != nil {
		fmt.Printf("x %s\n", err)
		return
	}
	y, err := formFloat(r, "y")
	if err != nil {
		fmt.Printf("y %s\n", err)
		return
	}
	k, err := strconv.Atoi(r.Form.Get("k"))
	if err != nil || k < 0 {
		http.Error(w, "bad k", http.StatusBadRequest)
		return
	}

	w.Write(startArray)
	first := true
	it := s.tree.QueryKnn([]float64{x, y}, k)
	for it.Next() {
		if !first {
			w.Write(comma)
		}
		first = false
		writeRecord(w, it.Entry().Value)
	}
	w.Write(endArray)
}

func formFloat(r *http.Request, key string) (float64, error) {
	return strconv.ParseFloat(r.Form.Get(key), 64)
}

func writeRecord(w http.ResponseWriter, record ptcsv.Record) {
	bytes, err := json.Marshal(record)
	if err != nil {
		fmt.Printf("error marshalling %v %s\n", record, err)
		return
	}
	w.Write(bytes)
}
