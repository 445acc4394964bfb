package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fujao/internal/api"
	"fujao/internal/device"
	"fujao/internal/model"
	"fujao/internal/report"
)

func newAnimalsCmd(a *app) *cobra.Command {
	var busca string
	cmd := &cobra.Command{
		Use:   "animals",
		Short: "Listar os animais perdidos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.session.Current(); err != nil {
				return err
			}
			animals, err := a.api.LostAnimals(cmd.Context())
			if err != nil {
				return err
			}
			animals = model.FilterAnimals(animals, busca)
			if len(animals) == 0 {
				if busca != "" {
					fmt.Println("Nenhum animal encontrado com essa busca.")
				} else {
					fmt.Println("Nenhum animal perdido cadastrado.")
				}
				return nil
			}
			printAnimals(animals)
			fmt.Printf("%d animal(is) encontrado(s)\n", len(animals))
			return nil
		},
	}
	cmd.Flags().StringVar(&busca, "busca", "", "Filtrar por nome, raça, espécie ou descrição")
	return cmd
}

func printAnimals(animals []model.Animal) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME\tESPÉCIE\tRAÇA\tLOCALIZAÇÃO\tFOTO")
	for _, animal := range animals {
		raca := "-"
		if animal.Raca != nil {
			raca = *animal.Raca
		}
		foto := "não"
		if animal.ImagemBase64 != nil && *animal.ImagemBase64 != "" {
			foto = "sim"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.6f, %.6f\t%s\n",
			animal.ID, animal.Nome, animal.Especie, raca, animal.Latitude, animal.Longitude, foto)
	}
	w.Flush()
}

func newReportCmd(a *app) *cobra.Command {
	var (
		nome, especie, raca, tamanho, cor, descricao string
		foto                                         string
		camera                                       bool
		reset                                        bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Cadastrar um animal perdido",
		Long: `Cadastrar um animal perdido: captura sua localização atual, aceita uma foto
da galeria (--foto) ou da câmera (--camera) e envia o cadastro. Se o envio
falhar, os dados ficam guardados e um novo "fujao report" tenta de novo.
Espécies: ` + strings.Join(report.Species, ", ") + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.session.Current()
			if err != nil {
				return err
			}

			p := report.New(a.api, a.location, a.gate, a.store, a.log)
			if reset {
				if err := p.Reset(); err != nil {
					return err
				}
				fmt.Println("Rascunho descartado.")
				return nil
			}

			draft := p.Draft()
			applyFlag(&draft.Nome, nome)
			applyFlag(&draft.Especie, especie)
			applyFlag(&draft.Raca, raca)
			applyFlag(&draft.Tamanho, tamanho)
			applyFlag(&draft.Cor, cor)
			applyFlag(&draft.Descricao, descricao)
			if draft.Especie != "" && !report.ValidSpecies(draft.Especie) {
				return fmt.Errorf("espécie inválida; use uma de: %s", strings.Join(report.Species, ", "))
			}

			if err := p.AcquireLocation(ctx); err != nil {
				// Submission may still proceed on a previously acquired
				// coordinate; validation catches the fully missing case.
				fmt.Fprintf(os.Stderr, "Aviso: %v\n", err)
			}

			if camera {
				if err := p.AttachImage(ctx, device.CameraSource{Command: a.cfg.CameraCommand}); err != nil {
					return fmt.Errorf("não foi possível tirar a foto: %w", err)
				}
			} else if foto != "" {
				if err := p.AttachImage(ctx, device.GallerySource{Path: foto}); err != nil {
					return fmt.Errorf("não foi possível selecionar a imagem: %w", err)
				}
			}

			result, err := p.Submit(ctx, user.ID)
			if err != nil {
				var connErr *api.ConnectionError
				var statusErr *api.StatusError
				if errors.As(err, &connErr) || errors.As(err, &statusErr) {
					fmt.Fprintln(os.Stderr, "Seus dados foram preservados; execute \"fujao report\" para tentar novamente.")
				}
				return err
			}

			if result.NoPhoto {
				fmt.Println("Aviso: a imagem é muito grande e o animal foi cadastrado sem foto.")
			}
			fmt.Printf("Animal cadastrado com sucesso! (id %d)\n", result.Animal.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nome, "nome", "", "Nome do animal (obrigatório)")
	cmd.Flags().StringVar(&especie, "especie", "", "Espécie ("+strings.Join(report.Species, ", ")+")")
	cmd.Flags().StringVar(&raca, "raca", "", "Raça")
	cmd.Flags().StringVar(&tamanho, "tamanho", "", "Tamanho ("+strings.Join(report.Sizes, ", ")+")")
	cmd.Flags().StringVar(&cor, "cor", "", "Cor")
	cmd.Flags().StringVar(&descricao, "descricao", "", "Informações adicionais")
	cmd.Flags().StringVar(&foto, "foto", "", "Caminho de uma imagem da galeria")
	cmd.Flags().BoolVar(&camera, "camera", false, "Tirar a foto com o comando de câmera configurado")
	cmd.Flags().BoolVar(&reset, "reset", false, "Descartar o rascunho atual")
	return cmd
}

func applyFlag(field *string, value string) {
	if value != "" {
		*field = value
	}
}

func newPhotoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <id>",
		Short: "Obter o link da foto de um animal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id inválido: %s", args[0])
			}
			if _, err := a.session.Current(); err != nil {
				return err
			}
			url, err := a.api.AnimalPhotoURL(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
}

func newClaimCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "claim <id>",
		Short: "Reivindicar um animal perdido como seu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id inválido: %s", args[0])
			}
			user, err := a.session.Current()
			if err != nil {
				return err
			}

			animals, err := a.api.LostAnimals(cmd.Context())
			if err != nil {
				return err
			}
			var target *model.Animal
			for i := range animals {
				if animals[i].ID == id {
					target = &animals[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("animal %d não está na lista de perdidos", id)
			}

			if !yes {
				fmt.Printf("Você tem certeza de que este é seu animal \"%s\"? [s/N] ", target.Nome)
				var answer string
				fmt.Scanln(&answer)
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "s" && answer != "sim" {
					fmt.Println("Reivindicação cancelada.")
					return nil
				}
			}

			// The claim keeps the record as-is, flipping ownership and the
			// lost flag.
			target.Perdido = false
			target.UsuarioID = user.ID
			if _, err := a.api.UpdateAnimal(cmd.Context(), id, target); err != nil {
				return err
			}
			fmt.Printf("\"%s\" reivindicado com sucesso! Ele foi removido do mapa.\n", target.Nome)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Não pedir confirmação")
	return cmd
}

func newFoundCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "found",
		Short: "Animais encontrados",
	}
	cmd.AddCommand(newFoundListCmd(a), newFoundReportCmd(a))
	return cmd
}

func newFoundListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Listar animais encontrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.session.Current(); err != nil {
				return err
			}
			found, err := a.api.ListFoundAnimals(cmd.Context())
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println("Nenhum animal encontrado cadastrado.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tESPÉCIE\tDESCRIÇÃO\tLOCALIZAÇÃO")
			for _, f := range found {
				desc := "-"
				if f.Descricao != nil {
					desc = *f.Descricao
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%.6f, %.6f\n", f.ID, f.Especie, desc, f.Latitude, f.Longitude)
			}
			w.Flush()
			return nil
		},
	}
}

func newFoundReportCmd(a *app) *cobra.Command {
	var especie, raca, cor, descricao, foto string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Cadastrar um animal que você encontrou",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.session.Current()
			if err != nil {
				return err
			}

			status, err := a.gate.Request(device.CapLocation,
				"Precisamos da sua localização para cadastrar onde o animal foi encontrado.")
			if err != nil {
				return err
			}
			if status != device.Granted {
				return device.ErrPermissionDenied
			}
			coord, err := a.location.Current(ctx, device.AccuracyHigh)
			if err != nil {
				return fmt.Errorf("obter localização: %w", err)
			}

			var imagem *string
			if foto != "" {
				src := device.GallerySource{Path: foto}
				status, err := a.gate.Request(src.Capability(),
					"Precisamos de permissão para acessar suas fotos.")
				if err != nil {
					return err
				}
				if status != device.Granted {
					return device.ErrPermissionDenied
				}
				asset, err := src.Acquire(ctx)
				if err != nil {
					return err
				}
				imagem = &asset.Base64
			}

			found := &model.FoundAnimal{
				Especie:      especie,
				Raca:         optionalString(raca),
				Cor:          optionalString(cor),
				Descricao:    optionalString(descricao),
				Latitude:     coord.Latitude,
				Longitude:    coord.Longitude,
				UsuarioID:    user.ID,
				ImagemBase64: imagem,
			}
			created, err := a.api.CreateFoundAnimal(ctx, found)
			if err != nil {
				return err
			}
			fmt.Printf("Animal encontrado cadastrado com sucesso! (id %d)\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&especie, "especie", report.DefaultSpecies, "Espécie")
	cmd.Flags().StringVar(&raca, "raca", "", "Raça")
	cmd.Flags().StringVar(&cor, "cor", "", "Cor")
	cmd.Flags().StringVar(&descricao, "descricao", "", "Onde e como foi encontrado")
	cmd.Flags().StringVar(&foto, "foto", "", "Caminho de uma imagem da galeria")
	return cmd
}

func optionalString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
