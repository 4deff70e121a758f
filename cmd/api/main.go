// cmd/api/main.go
package main

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
)

func main() {
	fleetServiceURL, _ := url.Parse(getEnv("FLEET_SERVICE_URL", "http://localhost:8081"))
	bookingServiceURL, _ := url.Parse(getEnv("BOOKING_SERVICE_URL", "http://localhost:8082"))

	fleetProxy := httputil.NewSingleHostReverseProxy(fleetServiceURL)
	bookingProxy := httputil.NewSingleHostReverseProxy(bookingServiceURL)

	// Authentication is out of scope for this gateway; the caller identity in
	// X-User-ID passes through untouched and the booking service trusts it.
	http.Handle("/api/v1/fleet/", http.StripPrefix("/api/v1/fleet", fleetProxy))
	http.Handle("/api/v1/bookings", http.StripPrefix("/api/v1", bookingProxy))
	http.Handle("/api/v1/bookings/", http.StripPrefix("/api/v1", bookingProxy))
	http.Handle("/api/v1/available-vehicles", http.StripPrefix("/api/v1", bookingProxy))

	port := getEnv("PORT", "8080")
	log.Printf("API Gateway listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
