package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/treyhulse/kcsf-ops/internal/config"
	"github.com/treyhulse/kcsf-ops/internal/store"

	"go.uber.org/zap"
)

// AdministratorRole holders may edit roles and page permissions.
const AdministratorRole = "Administrator"

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotAdministrator = errors.New("caller does not hold the Administrator role")
)

// Table is the full authorization state: role → member emails and
// page → allowed roles.
type Table struct {
	Roles       map[string][]string `json:"roles"`
	Permissions map[string][]string `json:"permissions"`
}

// Resolver answers page-access questions for operator emails. State loads
// lazily on first use: document store first, local file second, built-in
// defaults last (which are then written back so the next load succeeds).
type Resolver struct {
	store  *store.Store
	file   string
	logger *zap.Logger

	mu     sync.Mutex
	loaded bool
	table  Table
}

func NewResolver(cfg config.Config, st *store.Store, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  st,
		file:   cfg.AuthzFile,
		logger: logger.Named("authz"),
	}
}

// Access reports whether email may open page. A page with no permission
// entry denies everyone.
func (r *Resolver) Access(ctx context.Context, email, page string) (bool, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	allowed, ok := r.table.Permissions[page]
	if !ok {
		return false, nil
	}
	for _, role := range allowed {
		for _, member := range r.table.Roles[role] {
			if member == email {
				return true, nil
			}
		}
	}
	return false, nil
}

// RolesOf lists the roles email belongs to.
func (r *Resolver) RolesOf(ctx context.Context, email string) ([]string, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var roles []string
	for role, members := range r.table.Roles {
		for _, member := range members {
			if member == email {
				roles = append(roles, role)
				break
			}
		}
	}
	return roles, nil
}

// SetRoleMembers replaces a role's member list. Administrator-only.
func (r *Resolver) SetRoleMembers(ctx context.Context, actor, role string, emails []string) error {
	if err := r.requireAdministrator(ctx, actor); err != nil {
		return err
	}

	r.mu.Lock()
	r.table.Roles[role] = append([]string(nil), emails...)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	return r.persist(ctx, snapshot)
}

// SetPageRoles replaces the roles allowed on a page. Administrator-only.
func (r *Resolver) SetPageRoles(ctx context.Context, actor, page string, roles []string) error {
	if err := r.requireAdministrator(ctx, actor); err != nil {
		return err
	}

	r.mu.Lock()
	r.table.Permissions[page] = append([]string(nil), roles...)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	return r.persist(ctx, snapshot)
}

func (r *Resolver) requireAdministrator(ctx context.Context, actor string) error {
	if err := r.ensureLoaded(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, member := range r.table.Roles[AdministratorRole] {
		if member == actor {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotAdministrator, actor)
}

func (r *Resolver) ensureLoaded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}

	table, err := r.loadFromStore(ctx)
	if err != nil || len(table.Roles) == 0 {
		if err != nil {
			r.logger.Warn("loading authorization table from store failed, trying file", zap.Error(err))
		}
		table, err = r.loadFromFile()
		if err != nil {
			r.logger.Warn("loading authorization file failed, materializing defaults", zap.Error(err))
			table = defaultTable()
			if writeErr := r.writeFile(table); writeErr != nil {
				r.logger.Error("persisting default authorization table failed", zap.Error(writeErr))
			}
		}
	}

	r.table = table
	r.loaded = true
	return nil
}

func (r *Resolver) loadFromStore(ctx context.Context) (Table, error) {
	if r.store == nil {
		return Table{}, errors.New("document store is not configured")
	}

	roleDocs, err := r.store.Read(ctx, store.CollectionRoles, nil)
	if err != nil {
		return Table{}, err
	}
	permDocs, err := r.store.Read(ctx, store.CollectionPermissions, nil)
	if err != nil {
		return Table{}, err
	}

	table := Table{
		Roles:       make(map[string][]string, len(roleDocs)),
		Permissions: make(map[string][]string, len(permDocs)),
	}
	for _, doc := range roleDocs {
		name, _ := doc["role"].(string)
		if name == "" {
			continue
		}
		table.Roles[name] = stringSlice(doc["emails"])
	}
	for _, doc := range permDocs {
		name, _ := doc["page"].(string)
		if name == "" {
			continue
		}
		table.Permissions[name] = stringSlice(doc["roles"])
	}
	return table, nil
}

func (r *Resolver) loadFromFile() (Table, error) {
	raw, err := os.ReadFile(r.file)
	if err != nil {
		return Table{}, err
	}
	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return Table{}, fmt.Errorf("decoding %s: %w", r.file, err)
	}
	if table.Roles == nil || table.Permissions == nil {
		return Table{}, fmt.Errorf("%s is missing roles or permissions", r.file)
	}
	return table, nil
}

func (r *Resolver) writeFile(table Table) error {
	raw, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.file, raw, 0o644)
}

// persist writes the table to the file and, when available, the store.
func (r *Resolver) persist(ctx context.Context, table Table) error {
	if err := r.writeFile(table); err != nil {
		return fmt.Errorf("persisting authorization file: %w", err)
	}
	if r.store == nil {
		return nil
	}
	for role, emails := range table.Roles {
		if err := r.store.Upsert(ctx, store.CollectionRoles,
			store.Filter{"role": role},
			store.Document{"role": role, "emails": emails},
		); err != nil {
			return err
		}
	}
	for page, roles := range table.Permissions {
		if err := r.store.Upsert(ctx, store.CollectionPermissions,
			store.Filter{"page": page},
			store.Document{"page": page, "roles": roles},
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) snapshotLocked() Table {
	snap := Table{
		Roles:       make(map[string][]string, len(r.table.Roles)),
		Permissions: make(map[string][]string, len(r.table.Permissions)),
	}
	for k, v := range r.table.Roles {
		snap.Roles[k] = append([]string(nil), v...)
	}
	for k, v := range r.table.Permissions {
		snap.Permissions[k] = append([]string(nil), v...)
	}
	return snap
}

func stringSlice(v any) []string {
	switch vs := v.(type) {
	case []string:
		return append([]string(nil), vs...)
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func defaultTable() Table {
	return Table{
		Roles: map[string][]string{
			AdministratorRole: {},
			"Sales":           {},
			"Operations":      {},
			"Purchasing":      {},
		},
		Permissions: map[string][]string{
			"Admin":             {AdministratorRole},
			"TMS":               {AdministratorRole, "Operations"},
			"Shipping Calendar": {AdministratorRole, "Operations"},
			"Sales Analytics":   {AdministratorRole, "Sales"},
			"Order Management":  {AdministratorRole, "Sales", "Operations"},
			"MRP":               {AdministratorRole, "Purchasing"},
			"Dashboard Builder": {AdministratorRole, "Sales", "Operations", "Purchasing"},
		},
	}
}
