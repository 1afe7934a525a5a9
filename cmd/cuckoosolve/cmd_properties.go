package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Scramblecoin/cuckoo/engine"
)

func runProperties(cmd *cobra.Command, args []string) {
	p := buildParams()
	e, err := engine.New(p, engine.DefaultInputQueueCapacity, nil)
	if err != nil {
		log.Fatalln("constructing engine:", err)
	}
	enc, err := json.MarshalIndent(e.Properties(), "", "  ")
	if err != nil {
		log.Fatalln("marshaling properties:", err)
	}
	fmt.Println(string(enc))
}
