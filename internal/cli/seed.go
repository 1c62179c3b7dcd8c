package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/service"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// Fixtures is the seed file layout.
type Fixtures struct {
	SuperAdmins []StaffFixture `yaml:"super_admins"`
	Hotels      []HotelFixture `yaml:"hotels"`
}

type StaffFixture struct {
	Email    string      `yaml:"email"`
	Name     string      `yaml:"name"`
	Password string      `yaml:"password"`
	Role     domain.Role `yaml:"role"`
}

type HotelFixture struct {
	Name         string `yaml:"name"`
	Slug         string `yaml:"slug"`
	Address      string `yaml:"address"`
	Phone        string `yaml:"phone"`
	Email        string `yaml:"email"`
	Currency     string `yaml:"currency"`
	Timezone     string `yaml:"timezone"`
	TaxRateBP    int    `yaml:"tax_rate_bp"`
	CheckInTime  string `yaml:"check_in_time"`
	CheckOutTime string `yaml:"check_out_time"`

	RoomTypes    []RoomTypeFixture    `yaml:"room_types"`
	Staff        []StaffFixture       `yaml:"staff"`
	Guests       []GuestFixture       `yaml:"guests"`
	Reservations []ReservationFixture `yaml:"reservations"`
}

type RoomTypeFixture struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	BaseRate     int64    `yaml:"base_rate"`
	MaxOccupancy int      `yaml:"max_occupancy"`
	Amenities    []string `yaml:"amenities"`
	Rooms        []string `yaml:"rooms"`
}

type GuestFixture struct {
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	Nationality string `yaml:"nationality"`
	VIP         bool   `yaml:"vip"`
}

// ReservationFixture books a stay. Dates are either absolute (check_in and
// check_out) or relative to the hotel's today (arrive_in_days and nights).
type ReservationFixture struct {
	Guest        string      `yaml:"guest"` // guest email
	Room         string      `yaml:"room"`  // room number
	CheckIn      domain.Date `yaml:"check_in"`
	CheckOut     domain.Date `yaml:"check_out"`
	ArriveInDays int         `yaml:"arrive_in_days"`
	Nights       int         `yaml:"nights"`
	Adults       int         `yaml:"adults"`
	Children     int         `yaml:"children"`
	Confirm      bool        `yaml:"confirm"`
}

func (rf ReservationFixture) stay(today domain.Date) domain.Stay {
	if !rf.CheckIn.IsZero() {
		return domain.Stay{CheckIn: rf.CheckIn, CheckOut: rf.CheckOut}
	}
	in := today.AddDays(rf.ArriveInDays)
	return domain.Stay{CheckIn: in, CheckOut: in.AddDays(max(rf.Nights, 1))}
}

// SeedResult counts what Seed created and what already existed.
type SeedResult struct {
	Created map[string]int
	Skipped map[string]int
}

func (r *SeedResult) add(kind string, err error) error {
	if err == nil {
		r.Created[kind]++
		return nil
	}
	if apiErr := domain.AsAPIError(err); apiErr.Type == domain.ErrorTypeConflict {
		r.Skipped[kind]++
		return nil
	}
	return err
}

// ParseFixtures decodes a seed file.
func ParseFixtures(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// Seed loads fixtures through the service. Rows that already exist are skipped, so
// seeding twice is harmless.
func Seed(ctx context.Context, svc *service.Service, f *Fixtures) (*SeedResult, error) {
	res := &SeedResult{Created: map[string]int{}, Skipped: map[string]int{}}
	root := tenant.Scope{StaffID: "seed", StaffName: "seed", Role: domain.RoleSuperAdmin}

	for _, sa := range f.SuperAdmins {
		_, err := svc.CreateSuperAdmin(ctx, sa.Email, sa.Name, sa.Password)
		if err := res.add("super_admins", err); err != nil {
			return nil, fmt.Errorf("super admin %s: %w", sa.Email, err)
		}
	}

	existing, err := svc.ListHotels(ctx, root)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]string, len(existing))
	for _, h := range existing {
		bySlug[h.Slug] = h.ID
	}

	for _, hf := range f.Hotels {
		slug := service.Slugify(hf.Slug)
		if slug == "" {
			slug = service.Slugify(hf.Name)
		}
		hotelID, ok := bySlug[slug]
		if ok {
			res.Skipped["hotels"]++
		} else {
			h, err := svc.CreateHotel(ctx, root, hf.input())
			if err != nil {
				return nil, fmt.Errorf("hotel %s: %w", hf.Name, err)
			}
			hotelID = h.ID
			res.Created["hotels"]++
		}
		if err := seedHotel(ctx, svc, tenant.Scope{StaffID: "seed", StaffName: "seed", HotelID: hotelID, Role: domain.RoleAdmin}, hf, res); err != nil {
			return nil, fmt.Errorf("hotel %s: %w", hf.Name, err)
		}
	}
	return res, nil
}

func (hf HotelFixture) input() service.HotelInput {
	return service.HotelInput{
		Name:         hf.Name,
		Slug:         hf.Slug,
		Address:      hf.Address,
		Phone:        hf.Phone,
		Email:        hf.Email,
		Currency:     hf.Currency,
		Timezone:     hf.Timezone,
		TaxRateBP:    hf.TaxRateBP,
		CheckInTime:  hf.CheckInTime,
		CheckOutTime: hf.CheckOutTime,
	}
}

func seedHotel(ctx context.Context, svc *service.Service, sc tenant.Scope, hf HotelFixture, res *SeedResult) error {
	types, err := svc.ListRoomTypes(ctx, sc)
	if err != nil {
		return err
	}
	typeIDs := make(map[string]string, len(types))
	for _, rt := range types {
		typeIDs[strings.ToLower(rt.Name)] = rt.ID
	}
	rooms, err := svc.ListRooms(ctx, sc)
	if err != nil {
		return err
	}
	roomIDs := make(map[string]string, len(rooms))
	for _, r := range rooms {
		roomIDs[r.Number] = r.ID
	}

	for _, tf := range hf.RoomTypes {
		id, ok := typeIDs[strings.ToLower(tf.Name)]
		if ok {
			res.Skipped["room_types"]++
		} else {
			rt, err := svc.CreateRoomType(ctx, sc, service.RoomTypeInput{
				Name:         tf.Name,
				Description:  tf.Description,
				BaseRate:     tf.BaseRate,
				MaxOccupancy: tf.MaxOccupancy,
				Amenities:    tf.Amenities,
			})
			if err != nil {
				return fmt.Errorf("room type %s: %w", tf.Name, err)
			}
			id = rt.ID
			res.Created["room_types"]++
		}

		for _, number := range tf.Rooms {
			if _, ok := roomIDs[number]; ok {
				res.Skipped["rooms"]++
				continue
			}
			room, err := svc.CreateRoom(ctx, sc, service.RoomInput{RoomTypeID: id, Number: number, Floor: floorOf(number)})
			if err != nil {
				return fmt.Errorf("room %s: %w", number, err)
			}
			roomIDs[room.Number] = room.ID
			res.Created["rooms"]++
		}
	}

	for _, st := range hf.Staff {
		_, err := svc.CreateStaff(ctx, sc, service.StaffInput{
			Email: st.Email, Name: st.Name, Password: st.Password, Role: st.Role,
		})
		if err := res.add("staff", err); err != nil {
			return fmt.Errorf("staff %s: %w", st.Email, err)
		}
	}

	for _, g := range hf.Guests {
		_, err := svc.CreateGuest(ctx, sc, service.GuestInput{
			FirstName: g.FirstName, LastName: g.LastName, Email: g.Email,
			Phone: g.Phone, Nationality: g.Nationality, VIP: g.VIP,
		})
		if err := res.add("guests", err); err != nil {
			return fmt.Errorf("guest %s: %w", g.Email, err)
		}
	}

	if len(hf.Reservations) == 0 {
		return nil
	}
	hotel, err := svc.GetHotel(ctx, sc, sc.HotelID)
	if err != nil {
		return err
	}
	today := domain.DateOf(svc.Now().In(hotel.Location()))

	for _, rf := range hf.Reservations {
		roomID, ok := roomIDs[rf.Room]
		if !ok {
			return fmt.Errorf("reservation for %s: unknown room %s", rf.Guest, rf.Room)
		}
		guestID, err := findGuest(ctx, svc, sc, rf.Guest)
		if err != nil {
			return err
		}
		stay := rf.stay(today)
		_, err = svc.CreateReservation(ctx, sc, service.ReservationInput{
			GuestID:  guestID,
			RoomID:   roomID,
			CheckIn:  stay.CheckIn,
			CheckOut: stay.CheckOut,
			Adults:   max(rf.Adults, 1),
			Children: rf.Children,
			Confirm:  rf.Confirm,
		})
		if err := res.add("reservations", err); err != nil {
			return fmt.Errorf("reservation %s in %s: %w", rf.Guest, rf.Room, err)
		}
	}
	return nil
}

func findGuest(ctx context.Context, svc *service.Service, sc tenant.Scope, email string) (string, error) {
	guests, err := svc.SearchGuests(ctx, sc, email, 10)
	if err != nil {
		return "", err
	}
	for _, g := range guests {
		if strings.EqualFold(g.Email, email) {
			return g.ID, nil
		}
	}
	return "", fmt.Errorf("reservation: unknown guest %s", email)
}

// floorOf reads the floor from a room number such as 101 or 1204.
func floorOf(number string) int {
	if len(number) < 3 {
		return 0
	}
	n := 0
	for _, c := range number[:len(number)-2] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func newSeedCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load hotels, rooms, staff and guests from a fixtures file",
		Long: `Load demo or initial data from a YAML fixtures file.

Existing hotels (matched by slug), room types (by name), rooms (by number) and
staff or guests (by email) are left alone, so the command can be re-run.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(file)
			if err != nil {
				return err
			}
			defer in.Close()
			fixtures, err := ParseFixtures(in)
			if err != nil {
				return err
			}

			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := Seed(cmd.Context(), svc, fixtures)
			if err != nil {
				return err
			}
			for _, kind := range []string{"super_admins", "hotels", "room_types", "rooms", "staff", "guests", "reservations"} {
				if res.Created[kind]+res.Skipped[kind] == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-13s created %d, skipped %d\n", kind, res.Created[kind], res.Skipped[kind])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "fixtures.yaml", "fixtures file")
	return cmd
}
