package main

import (
	"fmt"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/exceptions"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.out, "ktctl %s (%s)\n", Version, Tag)
			return nil
		},
	}
}

func (c *cli) metadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Show the server capability statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			raw, _ := cmd.Flags().GetBool("raw")
			if raw {
				body, err := c.clients.Resources.GetMetadataRaw(ctx)
				if err != nil {
					return err
				}
				_, err = c.out.Write(append(body, '\n'))
				return err
			}

			md, err := c.clients.Resources.GetMetadata(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "software\t%s\n", md.Software)
			fmt.Fprintf(w, "fhir version\t%s\n", md.FHIRVersion)
			fmt.Fprintf(w, "authorize\t%s\n", md.AuthorizeEndpoint)
			fmt.Fprintf(w, "token\t%s\n", md.TokenEndpoint)
			return w.Flush()
		},
	}
	cmd.Flags().Bool("raw", false, "print the document as returned by the server")
	return cmd
}

func (c *cli) testAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-auth",
		Short: "Check that the configured credentials are accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.clients.Auth.TestAuthentication(c.context(cmd)) {
				return exceptions.ErrAuthenticationFailure(nil, c.internalConfig.Koppeltaal.Username)
			}
			fmt.Fprintln(c.out, "authenticated")
			return nil
		},
	}
}

func (c *cli) activitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activities [id]",
		Short: "List activity definitions, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			if len(args) == 1 {
				res, err := c.clients.Resources.GetActivityDefinitionByID(ctx, args[0])
				if err != nil {
					return err
				}
				return c.printJSON(res)
			}

			defs, err := c.clients.Resources.GetActivityDefinitions(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVERSION")
			for _, def := range defs {
				version := ""
				if def.Meta != nil {
					version = def.Meta.VersionId
				}
				fmt.Fprintf(w, "%s\t%s\n", def.ID, version)
			}
			return w.Flush()
		},
	}
}

func (c *cli) headersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headers",
		Short: "List message headers in the mailbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			filter.ProcessingStatus = models.ProcessingStatus(status)
			filter.Count, _ = cmd.Flags().GetInt("count")

			headers, err := c.clients.Messages.Query(c.context(cmd), filter)
			if err != nil {
				return err
			}
			return c.printHeaders(headers)
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().String("status", "", "processing status: New, Claimed, Success or Failed")
	cmd.Flags().Int("count", 0, "maximum number of headers")
	return cmd
}

func (c *cli) claimNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-next",
		Short: "Claim the next new message",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}
			header, err := c.clients.Messages.ClaimNext(c.context(cmd), filter)
			if err != nil {
				return err
			}
			if header == nil {
				fmt.Fprintln(c.out, "no new messages")
				return nil
			}
			return c.printHeaders([]models.MessageHeader{*header})
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func (c *cli) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <header-id>",
		Short: "Print the bundle a message header belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := c.clients.Messages.FetchBundle(c.context(cmd), &models.MessageHeader{ID: args[0]})
			if err != nil {
				return err
			}
			return c.printJSON(bundle)
		},
	}
}

func (c *cli) transitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transition <header-id> <status>",
		Short: "Move a message header to another processing status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			target := models.ProcessingStatus(args[1])
			if !target.IsValid() {
				return exceptions.ErrProtocolViolation(nil, "unknown processing status "+args[1])
			}

			bundle, err := c.clients.Messages.FetchBundle(ctx, &models.MessageHeader{ID: args[0]})
			if err != nil {
				return err
			}
			headers, err := models.MessageHeaders(c.namespace(), bundle)
			if err != nil {
				return err
			}
			var header *models.MessageHeader
			for i := range headers {
				if headers[i].ID == args[0] {
					header = &headers[i]
					break
				}
			}
			if header == nil {
				return exceptions.ErrNotFound(nil, "MessageHeader/"+args[0])
			}

			var next *models.MessageHeader
			if target == models.ProcessingStatusFailed {
				reason, _ := cmd.Flags().GetString("reason")
				next, err = c.clients.Messages.MarkFailed(ctx, header, reason)
			} else {
				next, err = c.clients.Messages.TransitionStatus(ctx, header, target)
			}
			if err != nil {
				return err
			}
			return c.printHeaders([]models.MessageHeader{*next})
		},
	}
	cmd.Flags().String("reason", "", "processing exception recorded with Failed")
	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("event", "", "event code, e.g. CreateOrUpdateCarePlan")
	cmd.Flags().String("patient", "", "patient url")
}

func filterFromFlags(cmd *cobra.Command) (models.MessageFilter, error) {
	event, _ := cmd.Flags().GetString("event")
	patient, _ := cmd.Flags().GetString("patient")
	filter := models.MessageFilter{Event: models.Event(event), Patient: patient}
	if filter.Event != "" && !filter.Event.IsValid() {
		return filter, exceptions.ErrProtocolViolation(nil, "unknown event "+event)
	}
	return filter, nil
}

func (c *cli) printHeaders(headers []models.MessageHeader) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tEVENT\tSTATUS\tPATIENT\tMESSAGE ID")
	for _, h := range headers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", h.ID, h.Version, h.Event, h.ProcessingStatus, h.PatientReference, h.MessageID)
	}
	return w.Flush()
}

func (c *cli) printJSON(v interface{}) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = c.out.Write(append(body, '\n'))
	return err
}
