// Command icsexport writes the upcoming club activities to an .ics
// file, for hosting on a static site or importing by hand.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ukmcatur/caturbot/internal/clients/simcat"
	"github.com/ukmcatur/caturbot/internal/service"
)

func main() {
	apiURL := flag.String("api", os.Getenv("SIMCAT_API_URL"), "SIMCAT backend base URL")
	out := flag.String("o", "ukm-catur.ics", "output file, - for stdout")
	tzName := flag.String("tz", "Asia/Jakarta", "club timezone")
	flag.Parse()

	if *apiURL == "" {
		log.Fatal("backend URL required: -api or SIMCAT_API_URL")
	}

	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", *tzName, err)
	}

	api := simcat.NewClient(strings.TrimRight(*apiURL, "/"))
	schedSvc := service.NewScheduleService(api)
	calSvc := service.NewCalendarService(schedSvc, nil, loc)

	ics, err := calSvc.ExportICS(time.Now().In(loc))
	if err != nil {
		log.Fatalf("Export: %v", err)
	}

	if *out == "-" {
		fmt.Print(ics)
		return
	}
	if err := os.WriteFile(*out, []byte(ics), 0o644); err != nil {
		log.Fatalf("Write %s: %v", *out, err)
	}
	log.Printf("Wrote %s", *out)
}
