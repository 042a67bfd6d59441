package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var dryRun bool

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(addMatchCmd)
	rootCmd.AddCommand(metricsCmd)

	addMatchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the match without storing it")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/health", nil)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register NAME TEAM",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodPost, "/register", map[string]string{"name": args[0], "team": args[1]})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/users", nil)
	},
}

var userCmd = &cobra.Command{
	Use:   "user ID",
	Short: "Show a single user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return performRequest(cmd, http.MethodGet, fmt.Sprintf("/user/%d", id), nil)
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Change a user's name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return performRequest(cmd, http.MethodPut, fmt.Sprintf("/user/%d", id), map[string]string{"name": args[1]})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return performRequest(cmd, http.MethodDelete, fmt.Sprintf("/user/%d", id), nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/matches", nil)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match ID",
	Short: "Show a single match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return performRequest(cmd, http.MethodGet, fmt.Sprintf("/match/%d", id), nil)
	},
}

var addMatchCmd = &cobra.Command{
	Use:   "add-match USER1 USER2 SCORE1 SCORE2 INPUT_USER",
	Short: "Register the result of a match between two users",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		var values [5]int64
		for i, arg := range args {
			v, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("argument %d (%q) is not an integer", i+1, arg)
			}
			values[i] = v
		}
		body := map[string]int64{
			"user1_id":     values[0],
			"user2_id":     values[1],
			"user1_score":  values[2],
			"user2_score":  values[3],
			"input_userid": values[4],
		}
		endpoint := "/add/match"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performRequest(cmd, http.MethodPost, endpoint, body)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/metrics", nil)
	},
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// performRequest sends body as JSON when it is not nil and prints the response.
// Non-2xx responses are returned as errors.
func performRequest(cmd *cobra.Command, method, endpoint string, body any) error {
	url := host + endpoint
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Making %s request to %s\n", method, url)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(cmd.Context(), method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Fprintf(out, "Status Code: %d\n", resp.StatusCode)
	fmt.Fprintln(out, "Response Body:")
	fmt.Fprintln(out, string(respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server responded with %s", resp.Status)
	}
	return nil
}
