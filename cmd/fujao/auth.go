package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"fujao/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func newRegisterCmd(a *app) *cobra.Command {
	var nome, telefone, cpf, email, senha string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Criar uma nova conta",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if nome, err = askLine("Nome", nome); err != nil {
				return err
			}
			if telefone, err = askLine("Telefone", telefone); err != nil {
				return err
			}
			if cpf, err = askLine("CPF", cpf); err != nil {
				return err
			}
			if email, err = askLine("E-mail", email); err != nil {
				return err
			}
			if senha, err = askLine("Senha", senha); err != nil {
				return err
			}

			telefone = digitsOnly(telefone)
			cpf = digitsOnly(cpf)
			email = strings.ToLower(strings.TrimSpace(email))
			if msg := validateRegistration(nome, telefone, cpf, email, senha); msg != "" {
				return fmt.Errorf("%s", msg)
			}

			user := &model.User{
				Nome:      strings.TrimSpace(nome),
				Telefone:  telefone,
				CPF:       cpf,
				Email:     email,
				HashSenha: senha,
			}
			created, err := a.api.RegisterUser(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Printf("Conta criada para %s. Faça login com: fujao login --email %s\n", created.Nome, created.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&nome, "nome", "", "Nome completo")
	cmd.Flags().StringVar(&telefone, "telefone", "", "Telefone com DDD")
	cmd.Flags().StringVar(&cpf, "cpf", "", "CPF (apenas números)")
	cmd.Flags().StringVar(&email, "email", "", "E-mail")
	cmd.Flags().StringVar(&senha, "senha", "", "Senha (mínimo 6 caracteres)")
	return cmd
}

func validateRegistration(nome, telefone, cpf, email, senha string) string {
	switch {
	case strings.TrimSpace(nome) == "":
		return "preencha o nome"
	case telefone == "":
		return "preencha o telefone"
	case len(cpf) != 11:
		return "CPF inválido"
	case !emailPattern.MatchString(email):
		return "preencha um e-mail válido"
	case len(senha) < 6:
		return "a senha deve ter pelo menos 6 caracteres"
	}
	return ""
}

func newLoginCmd(a *app) *cobra.Command {
	var email, senha string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Entrar na sua conta",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = askLine("E-mail", email); err != nil {
				return err
			}
			if senha, err = askLine("Senha", senha); err != nil {
				return err
			}
			if email == "" || senha == "" {
				return fmt.Errorf("preencha email e senha")
			}

			user, err := a.api.Login(cmd.Context(), model.Credentials{
				Email:     strings.ToLower(strings.TrimSpace(email)),
				HashSenha: senha,
			})
			if err != nil {
				return err
			}
			if err := a.session.Save(user); err != nil {
				return err
			}
			fmt.Printf("Olá, %s!\n", user.Nome)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "E-mail")
	cmd.Flags().StringVar(&senha, "senha", "", "Senha")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sair da conta",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Clear(); err != nil {
				return err
			}
			fmt.Println("Sessão encerrada.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostrar o usuário autenticado",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.Current()
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s> (id %d)\n", user.Nome, user.Email, user.ID)
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Ver e atualizar o perfil",
	}
	cmd.AddCommand(newProfileShowCmd(a), newProfileUpdateCmd(a))
	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Mostrar os dados do perfil",
		RunE: func(cmd *cobra.Command, args []string) error {
			cached, err := a.session.Current()
			if err != nil {
				return err
			}
			user, err := a.api.UserByID(cmd.Context(), cached.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Nome:     %s\n", user.Nome)
			fmt.Printf("Telefone: %s\n", user.Telefone)
			fmt.Printf("CPF:      %s\n", user.CPF)
			fmt.Printf("E-mail:   %s\n", user.Email)
			return nil
		},
	}
}

func newProfileUpdateCmd(a *app) *cobra.Command {
	var nome, telefone, email, novaSenha string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Atualizar nome, telefone, e-mail ou senha",
		RunE: func(cmd *cobra.Command, args []string) error {
			cached, err := a.session.Current()
			if err != nil {
				return err
			}

			email = strings.ToLower(strings.TrimSpace(email))
			if email != "" && !emailPattern.MatchString(email) {
				return fmt.Errorf("preencha um e-mail válido")
			}
			if novaSenha != "" && len(novaSenha) < 6 {
				return fmt.Errorf("a nova senha deve ter pelo menos 6 caracteres")
			}

			update := &model.User{
				Nome:      strings.TrimSpace(nome),
				Telefone:  digitsOnly(telefone),
				Email:     email,
				HashSenha: strings.TrimSpace(novaSenha),
			}
			user, err := a.api.UpdateUser(cmd.Context(), cached.ID, update)
			if err != nil {
				return err
			}
			if err := a.session.Save(user); err != nil {
				return err
			}
			fmt.Println("Perfil atualizado com sucesso!")
			return nil
		},
	}
	cmd.Flags().StringVar(&nome, "nome", "", "Novo nome")
	cmd.Flags().StringVar(&telefone, "telefone", "", "Novo telefone")
	cmd.Flags().StringVar(&email, "email", "", "Novo e-mail")
	cmd.Flags().StringVar(&novaSenha, "nova-senha", "", "Nova senha")
	return cmd
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
