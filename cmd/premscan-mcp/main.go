// premscan-mcp is a thin MCP stdio bridge to a running premscan API, so
// agent tooling can request insurance quotes as a tool call.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// quoteRequest mirrors the premscan API request model.
type quoteRequest struct {
	Registration     string `json:"registration,omitempty"`
	Address          string `json:"address,omitempty"`
	Make             string `json:"make,omitempty"`
	Model            string `json:"model,omitempty"`
	Year             int    `json:"year,omitempty"`
	Postcode         string `json:"postcode,omitempty"`
	DriverAge        int    `json:"driver_age"`
	DriverGender     string `json:"driver_gender,omitempty"`
	ClaimsLast5Years int    `json:"claims_last_5_years"`
	ParkingType      string `json:"parking_type,omitempty"`
}

func main() {
	apiURL := os.Getenv("PREMSCAN_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PREMSCAN_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PREMSCAN_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"premscan",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	getQuoteTool := mcp.NewTool("get_quote",
		mcp.WithDescription("Get a real car-insurance premium by driving the insurer's public quote form. Provide either a registration plate with an address, or make/model/year with a postcode."),
		mcp.WithString("registration",
			mcp.Description("Vehicle registration plate (registration mode)"),
		),
		mcp.WithString("address",
			mcp.Description("Street address where the vehicle is kept (registration mode)"),
		),
		mcp.WithString("make",
			mcp.Description("Vehicle make, e.g. 'Toyota' (manual mode)"),
		),
		mcp.WithString("model",
			mcp.Description("Vehicle model, e.g. 'Corolla' (manual mode)"),
		),
		mcp.WithNumber("year",
			mcp.Description("Vehicle year (manual mode)"),
		),
		mcp.WithString("postcode",
			mcp.Description("Overnight-parking postcode (manual mode)"),
		),
		mcp.WithNumber("driver_age",
			mcp.Required(),
			mcp.Description("Main driver's age in years"),
		),
		mcp.WithString("driver_gender",
			mcp.Description("Main driver's gender"),
			mcp.Enum("male", "female"),
		),
		mcp.WithNumber("claims_last_5_years",
			mcp.Description("Number of at-fault claims in the last five years (default 0)"),
		),
		mcp.WithString("parking_type",
			mcp.Description("Where the vehicle is parked overnight"),
			mcp.Enum("garage", "carport", "driveway", "street"),
		),
	)

	s.AddTool(getQuoteTool, handleGetQuote(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleGetQuote(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		driverAge, err := request.RequireInt("driver_age")
		if err != nil {
			return mcp.NewToolResultError("driver_age is required"), nil
		}

		reqBody := quoteRequest{
			Registration:     request.GetString("registration", ""),
			Address:          request.GetString("address", ""),
			Make:             request.GetString("make", ""),
			Model:            request.GetString("model", ""),
			Year:             request.GetInt("year", 0),
			Postcode:         request.GetString("postcode", ""),
			DriverAge:        driverAge,
			DriverGender:     request.GetString("driver_gender", ""),
			ClaimsLast5Years: request.GetInt("claims_last_5_years", 0),
			ParkingType:      request.GetString("parking_type", ""),
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/quote", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}
		if resp.StatusCode >= 400 {
			return mcp.NewToolResultError(fmt.Sprintf("API returned status %d: %s", resp.StatusCode, respBody)), nil
		}

		return mcp.NewToolResultText(string(respBody)), nil
	}
}
