// Package config carrega a configuração do gateway de autenticação.
//
// A ordem de carga é: arquivo YAML (opcional), variáveis de ambiente AUTHGATE_*,
// valores padrão e, por fim, validação. A tabela de permissões vem do arquivo
// indicado em user_role.permissions_file e/ou da seção permissions do próprio
// arquivo principal, e só é lida quando user_role.attribute_name não é vazio.
//
// Exemplo mínimo:
//
//	backend:
//	  url: http://localhost:8081
//	user_role:
//	  attribute_name: role
//	  permissions_file: permission.yaml
package config
