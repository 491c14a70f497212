package domain

// User representa um usuário do users.json.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"` // Texto puro (legado) ou hash bcrypt
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// Role é o papel do usuário, gravado como inteiro no users.json.
type Role int

// Constantes para os papéis de usuário.
const (
	RoleAdmin    Role = 0
	RoleEmployee Role = 1
	RoleManager  Role = 2
	RoleBuyer    Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleEmployee:
		return "Funcionário"
	case RoleManager:
		return "Gerente"
	case RoleBuyer:
		return "Comprador"
	}
	return "Desconhecido"
}

// Valid indica se o papel é um dos quatro conhecidos.
func (r Role) Valid() bool {
	return r >= RoleAdmin && r <= RoleBuyer
}

// Action é uma operação sujeita a controle de acesso.
type Action string

const (
	ActionRequest   Action = "requisicao" // criar, editar, consultar requisições
	ActionApprove   Action = "aprovar"    // aprovar ou reprovar
	ActionPurchase  Action = "comprar"    // calcular faltas e registrar compra
	ActionSend      Action = "enviar"     // almoxarifado -> setor
	ActionReceive   Action = "receber"    // confirmar recebimento no setor
	ActionWriteOff  Action = "baixa"      // baixa de estoque
	ActionViewStock Action = "estoque"    // consultar estoques e movimentações
	ActionReport    Action = "relatorio"
)

var permissions = map[Action][]Role{
	ActionRequest:   {RoleAdmin, RoleEmployee, RoleManager},
	ActionApprove:   {RoleAdmin, RoleManager},
	ActionPurchase:  {RoleAdmin, RoleBuyer},
	ActionSend:      {RoleAdmin, RoleBuyer},
	ActionReceive:   {RoleAdmin, RoleEmployee, RoleManager},
	ActionWriteOff:  {RoleAdmin, RoleEmployee, RoleManager},
	ActionViewStock: {RoleAdmin, RoleEmployee, RoleManager, RoleBuyer},
	ActionReport:    {RoleAdmin, RoleEmployee, RoleManager, RoleBuyer},
}

// Can é a verificação de capacidade exposta ao chamador.
// O motor de estados não consulta papéis; quem chama decide.
func Can(role Role, action Action) bool {
	for _, r := range permissions[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Actor é o usuário autenticado que dispara uma ação.
type Actor struct {
	Username string
	Name     string
	Role     Role
}
