package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/loadmatch/internal/core/driver"
	"github.com/example/loadmatch/internal/core/text"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// DriverResolver resolves a driver identity from a free-text name and a
// truck token against the directory.
type DriverResolver struct {
	directory secondary.DirectoryRepository
}

// NewDriverResolver creates a new DriverResolver with injected dependencies.
func NewDriverResolver(directory secondary.DirectoryRepository) *DriverResolver {
	return &DriverResolver{directory: directory}
}

// nameOutcome is what the name path found before the driver row lookup.
type nameOutcome struct {
	contact   *secondary.ContactRecord
	method    driver.Method
	note      string
	ambiguous bool
}

// Resolve runs both paths and combines them.
func (r *DriverResolver) Resolve(ctx context.Context, name, truck string) (driver.Result, error) {
	var (
		notes     []string
		byName    *driver.Match
		byTruck   *driver.Match
		ambiguous bool
	)

	if strings.TrimSpace(name) != "" {
		found, err := r.findContact(ctx, name)
		if err != nil {
			return driver.Result{}, err
		}
		notes = append(notes, found.note)
		ambiguous = found.ambiguous

		if found.contact != nil {
			drv, err := r.directory.GetDriverByContact(ctx, found.contact.ID)
			if err != nil {
				return driver.Result{}, fmt.Errorf("failed to get driver for contact %d: %w", found.contact.ID, err)
			}
			if drv != nil {
				byName = &driver.Match{Identity: identityOf(drv), Method: found.method}
			} else {
				notes = append(notes, driver.NoDriverRowNote(found.contact.ID))
			}
		}
	}

	if token := text.NormTruck(truck); token != "" {
		vehicle, err := r.directory.FindVehicleByNumber(ctx, token)
		if err != nil {
			return driver.Result{}, fmt.Errorf("failed to find vehicle %q: %w", token, err)
		}
		if vehicle != nil {
			drv, err := r.directory.GetDriverByVehicle(ctx, vehicle.ID)
			if err != nil {
				return driver.Result{}, fmt.Errorf("failed to get driver for vehicle %d: %w", vehicle.ID, err)
			}
			if drv != nil {
				byTruck = &driver.Match{Identity: identityOf(drv), Method: driver.MethodTruck}
			}
		}
	}

	return driver.Combine(byName, byTruck, notes, ambiguous), nil
}

func (r *DriverResolver) findContact(ctx context.Context, name string) (nameOutcome, error) {
	full := text.Norm(name)
	if full == "" {
		return nameOutcome{method: driver.MethodNameNone, note: driver.NoteEmptyName}, nil
	}

	exact, err := r.directory.FindContactByFullName(ctx, full)
	if err != nil {
		return nameOutcome{}, fmt.Errorf("failed to match contact by full name: %w", err)
	}
	if exact != nil {
		return nameOutcome{contact: exact, method: driver.MethodNameExact}, nil
	}

	like, err := r.directory.FindContactsLike(ctx, full, driver.LikeLimit)
	if err != nil {
		return nameOutcome{}, fmt.Errorf("failed to match contacts by substring: %w", err)
	}
	if len(like) == 1 {
		return nameOutcome{contact: like[0], method: driver.MethodNameLike}, nil
	}

	first, last := driver.SplitName(name)
	first, last = text.Norm(first), text.Norm(last)
	if first == "" && last == "" {
		return nameOutcome{method: driver.MethodNameNone, note: driver.NoteEmptyName}, nil
	}

	pool, err := r.fuzzyPool(ctx, first, last)
	if err != nil {
		return nameOutcome{}, err
	}

	if best := driver.PickBest(name, pool); best.Accepted {
		c := best.Contact
		return nameOutcome{
			contact: &secondary.ContactRecord{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName},
			method:  driver.MethodNameFuzzy,
			note:    driver.FuzzyNote(best.Distance),
		}, nil
	}

	if len(like) > 1 {
		return nameOutcome{method: driver.MethodNameNone, note: driver.NoteAmbiguous, ambiguous: true}, nil
	}
	return nameOutcome{method: driver.MethodNameNone, note: driver.NoteNoContact}, nil
}

// fuzzyPool gathers candidates sharing the soundex code of the last name
// (first name when there is none), falling back to a first-name prefix.
func (r *DriverResolver) fuzzyPool(ctx context.Context, first, last string) ([]driver.Contact, error) {
	var (
		records []*secondary.ContactRecord
		err     error
	)
	switch {
	case last != "" && text.Soundex(last) != "":
		records, err = r.directory.FindContactsByLastNameSoundex(ctx, last, driver.PoolLimit)
	case last == "" && text.Soundex(first) != "":
		records, err = r.directory.FindContactsByFirstNameSoundex(ctx, first, driver.PoolLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build soundex pool: %w", err)
	}

	if len(records) == 0 && first != "" {
		records, err = r.directory.FindContactsByFirstNamePrefix(ctx, driver.Prefix(first), driver.PoolLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to build prefix pool: %w", err)
		}
	}

	pool := make([]driver.Contact, len(records))
	for i, c := range records {
		pool[i] = driver.Contact{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName}
	}
	return pool, nil
}

func identityOf(d *secondary.DriverRecord) driver.Identity {
	return driver.Identity{
		DriverID:  d.ID,
		ContactID: d.ContactID,
		VehicleID: d.VehicleID,
		CarrierID: d.CarrierID,
	}
}
