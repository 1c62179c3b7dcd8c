package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/innkeeper/internal/availability"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/service"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// resolveHotel finds a hotel by ID or slug.
func resolveHotel(ctx context.Context, svc *service.Service, ref string) (*domain.Hotel, error) {
	root := tenant.Scope{StaffID: "cli", Role: domain.RoleSuperAdmin}
	hotels, err := svc.ListHotels(ctx, root)
	if err != nil {
		return nil, err
	}
	for _, h := range hotels {
		if h.ID == ref || h.Slug == ref {
			return &h.Hotel, nil
		}
	}
	return nil, fmt.Errorf("no hotel with id or slug %q", ref)
}

func newTimelineCommand(opts *RootOptions) *cobra.Command {
	var hotelRef, from string
	var days int
	cmd := &cobra.Command{
		Use:          "timeline",
		Short:        "Print a room-by-day occupancy chart",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var start domain.Date
			if from != "" {
				d, err := domain.ParseDate(from)
				if err != nil {
					return err
				}
				start = d
			}

			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			h, err := resolveHotel(cmd.Context(), svc, hotelRef)
			if err != nil {
				return err
			}
			sc := tenant.Scope{StaffID: "cli", HotelID: h.ID, Role: domain.RoleManager}
			tl, err := svc.Timeline(cmd.Context(), sc, start, days)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n\n", h.Name)
			return availability.RenderTimeline(cmd.OutOrStdout(), *tl)
		},
	}
	cmd.Flags().StringVar(&hotelRef, "hotel", "", "hotel id or slug")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 14, "number of days")
	_ = cmd.MarkFlagRequired("hotel")
	return cmd
}
