package domain

// Roles de la aplicación. Los define el colaborador de autenticación;
// el motor solo los consume desde el token ya resuelto.
const (
	RoleSales   = "sales"
	RoleManager = "manager"
)

// Command identifica cada tipo de comando/consulta que atraviesa el gate de capacidades.
type Command string

const (
	CommandCreateLead        Command = "create_lead"
	CommandViewLeads         Command = "view_leads"
	CommandSendCommunication Command = "send_communication"
	CommandEditLeadFields    Command = "edit_lead_fields"
	CommandChangeStatus      Command = "change_status"
	CommandAssignLead        Command = "assign_lead"
	CommandBulkAssign        Command = "bulk_assign"
	CommandResolveDuplicate  Command = "resolve_duplicate"
	CommandViewAnalytics     Command = "view_analytics"
)

// capabilities es la tabla fija rol -> comandos permitidos. No es configurable
// por el usuario: se aplica del lado del servidor aunque el cliente salte la UI.
var capabilities = map[string]map[Command]bool{
	RoleSales: {
		CommandCreateLead:        true,
		CommandViewLeads:         true,
		CommandSendCommunication: true,
		CommandEditLeadFields:    true,
		CommandChangeStatus:      true,
		CommandResolveDuplicate:  true,
	},
	RoleManager: {
		CommandCreateLead:       true,
		CommandViewLeads:        true,
		CommandChangeStatus:     true,
		CommandAssignLead:       true,
		CommandBulkAssign:       true,
		CommandResolveDuplicate: true,
		CommandViewAnalytics:    true,
	},
}

// RoleAllows responde si el rol puede ejecutar el comando.
// Un rol desconocido no puede ejecutar nada (falla cerrado).
func RoleAllows(role string, cmd Command) bool {
	perms, ok := capabilities[role]
	if !ok {
		return false
	}
	return perms[cmd]
}

// ValidRole responde si el rol es uno de los conocidos por el motor.
func ValidRole(role string) bool {
	return role == RoleSales || role == RoleManager
}
