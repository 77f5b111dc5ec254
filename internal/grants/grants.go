package grants

import (
	"context"
	"fmt"

	"driftcap/internal/sqlserver"
	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

// Provisioner creates a read-only analyst login and grants it SELECT on the
// monitored tables. Statements are rendered up front so they can be shown
// in a dry run before anything touches the server.
type Provisioner struct {
	cfg    models.Grants
	schema string
	tables []string
}

func NewProvisioner(cfg models.Grants, tables []models.Table) *Provisioner {
	schema := cfg.DefaultSchema
	if schema == "" {
		schema = "dbo"
	}
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return &Provisioner{cfg: cfg, schema: schema, tables: names}
}

// Validate checks every identifier that will be interpolated into DDL.
// SQL Server has no parameter binding for identifiers, so validation is
// the only line of defence against injection here.
func (p *Provisioner) Validate() error {
	if p.cfg.LoginName == "" {
		return errors.ValidationError("login_name", p.cfg.LoginName, "login name is required")
	}
	for _, name := range []string{p.cfg.LoginName, p.userName(), p.roleName(), p.schema} {
		if err := sqlserver.ValidateIdentifier(name); err != nil {
			return err
		}
	}
	for _, table := range p.tables {
		if err := sqlserver.ValidateIdentifier(table); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) userName() string {
	if p.cfg.UserName != "" {
		return p.cfg.UserName
	}
	return p.cfg.LoginName
}

func (p *Provisioner) roleName() string {
	if p.cfg.RoleName != "" {
		return p.cfg.RoleName
	}
	return "analyst_readonly"
}

// Statements renders the full provisioning script in execution order:
// login, database user, role, membership, then one grant per table.
// Each statement is guarded so reruns are idempotent.
func (p *Provisioner) Statements(password string) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	login := p.cfg.LoginName
	user := p.userName()
	role := p.roleName()

	stmts := []string{
		fmt.Sprintf(
			"IF NOT EXISTS (SELECT 1 FROM sys.server_principals WHERE name = '%s')\n"+
				"    CREATE LOGIN [%s] WITH PASSWORD = '%s'", login, login, escapeLiteral(password)),
		fmt.Sprintf(
			"IF NOT EXISTS (SELECT 1 FROM sys.database_principals WHERE name = '%s')\n"+
				"    CREATE USER [%s] FOR LOGIN [%s] WITH DEFAULT_SCHEMA = [%s]", user, user, login, p.schema),
		fmt.Sprintf(
			"IF NOT EXISTS (SELECT 1 FROM sys.database_principals WHERE name = '%s' AND type = 'R')\n"+
				"    CREATE ROLE [%s]", role, role),
		fmt.Sprintf("ALTER ROLE [%s] ADD MEMBER [%s]", role, user),
	}
	for _, table := range p.tables {
		stmts = append(stmts, fmt.Sprintf("GRANT SELECT ON [%s].[%s] TO [%s]", p.schema, table, role))
	}
	return stmts, nil
}

// Apply executes the provisioning script against a connected server.
func (p *Provisioner) Apply(ctx context.Context, svc *sqlserver.Service, password string) error {
	if password == "" {
		return errors.ValidationError("password", "", "a login password is required")
	}
	stmts, err := p.Statements(password)
	if err != nil {
		return err
	}
	return svc.ExecStatements(ctx, stmts)
}

// escapeLiteral doubles single quotes for embedding in a T-SQL string
// literal. Identifiers are never escaped, only validated.
func escapeLiteral(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	return string(out)
}
