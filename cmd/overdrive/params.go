package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/overdrive/internal/registry"
)

// apiClient talks to the param API served with --http-addr.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(addr string) *apiClient {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &apiClient{base: strings.TrimSuffix(base, "/"), http: &http.Client{Timeout: 5 * time.Second}}
}

func (c *apiClient) list(kind string) ([]registry.Value, error) {
	var out []registry.Value
	err := c.do(http.MethodGet, "/"+kind, "", &out)
	return out, err
}

type paramValue struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

func (c *apiClient) get(name string) (paramValue, error) {
	var out paramValue
	err := c.do(http.MethodGet, "/params/"+name, "", &out)
	return out, err
}

func (c *apiClient) set(name, value string) (paramValue, error) {
	var out paramValue
	err := c.do(http.MethodPut, "/params/"+name, value, &out)
	return out, err
}

func (c *apiClient) do(method, path, body string, out any) error {
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, e.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return json.Unmarshal(data, out)
}

func newParamsCmd() *cobra.Command {
	addr := "127.0.0.1:8470"

	cmd := &cobra.Command{
		Use:   "params",
		Short: "List, read or write runtime params of a running instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(addr)
			params, err := c.list("params")
			if err != nil {
				return err
			}
			logs, err := c.list("logs")
			if err != nil {
				return err
			}
			styled := isTerminal(os.Stdout)
			renderValues(cmd.OutOrStdout(), "params", params, styled)
			fmt.Fprintln(cmd.OutOrStdout())
			renderValues(cmd.OutOrStdout(), "logs", logs, styled)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&addr, "api", addr, "address of the param API (--http-addr of the instance)")

	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: "Read one param or log variable, e.g. override.timeoutMs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newAPIClient(addr).get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", v.Name, v.Value)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Write a param, e.g. override.enable 1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newAPIClient(addr).set(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", v.Name, v.Value)
			return nil
		},
	})
	return cmd
}
