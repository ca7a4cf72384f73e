package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/resume"
)

func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Manage the resume profile used for AI replies",
	}
	cmd.AddCommand(newResumeShowCmd())
	cmd.AddCommand(newResumeSetCmd())
	cmd.AddCommand(newResumeExportCmd())
	cmd.AddCommand(newResumeHistoryCmd())
	return cmd
}

func newResumeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current resume profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			profile, ok, err := a.resume.Current(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No resume saved. Use 'mailpane resume set' to create one.")
				return nil
			}
			printProfile(profile)
			return nil
		},
	}
}

func newResumeSetCmd() *cobra.Command {
	var updated resume.Profile

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update fields of the resume profile",
		Long: `Update fields of the resume profile. Unset flags keep their current
value; every save becomes a history version (the last ten are kept).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			profile, _, err := a.resume.Current(ctx)
			if err != nil {
				return err
			}

			applyIfSet(cmd, "name", &profile.FullName, updated.FullName)
			applyIfSet(cmd, "email", &profile.Email, updated.Email)
			applyIfSet(cmd, "phone", &profile.Phone, updated.Phone)
			applyIfSet(cmd, "address", &profile.Address, updated.Address)
			applyIfSet(cmd, "summary", &profile.Summary, updated.Summary)
			applyIfSet(cmd, "education", &profile.Education, updated.Education)
			applyIfSet(cmd, "skills", &profile.Skills, updated.Skills)
			applyIfSet(cmd, "experience", &profile.Experience, updated.Experience)
			applyIfSet(cmd, "projects", &profile.Projects, updated.Projects)
			applyIfSet(cmd, "certifications", &profile.Certifications, updated.Certifications)

			saved, err := a.resume.Save(ctx, profile)
			if err != nil {
				return err
			}
			fmt.Printf("Saved resume version %s.\n", saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&updated.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&updated.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&updated.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&updated.Address, "address", "", "address")
	cmd.Flags().StringVar(&updated.Summary, "summary", "", "professional summary")
	cmd.Flags().StringVar(&updated.Education, "education", "", "education")
	cmd.Flags().StringVar(&updated.Skills, "skills", "", "skills")
	cmd.Flags().StringVar(&updated.Experience, "experience", "", "experience")
	cmd.Flags().StringVar(&updated.Projects, "projects", "", "projects")
	cmd.Flags().StringVar(&updated.Certifications, "certifications", "", "certifications")
	return cmd
}

func newResumeExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the resume profile as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			data, err := a.resume.Export(ctx)
			if err != nil {
				return err
			}

			if out == "" {
				out = a.resume.ExportFilename()
			}
			if out == "-" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Printf("Exported resume to %s.\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: dated filename, '-' for stdout)")
	return cmd
}

func newResumeHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List saved resume versions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			history, err := a.resume.History(ctx)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Println("No resume versions saved.")
				return nil
			}
			for _, profile := range history {
				fmt.Printf("%s  %s  %s\n",
					profile.LastUpdated.Local().Format("2006-01-02 15:04:05"),
					profile.ID,
					profile.FullName)
			}
			return nil
		},
	}
}

func applyIfSet(cmd *cobra.Command, flag string, target *string, value string) {
	if cmd.Flags().Changed(flag) {
		*target = value
	}
}

func printProfile(profile resume.Profile) {
	fmt.Printf("Name:           %s\n", profile.FullName)
	fmt.Printf("Email:          %s\n", profile.Email)
	fmt.Printf("Phone:          %s\n", profile.Phone)
	fmt.Printf("Address:        %s\n", profile.Address)
	fmt.Printf("Summary:        %s\n", profile.Summary)
	fmt.Printf("Education:      %s\n", profile.Education)
	fmt.Printf("Skills:         %s\n", profile.Skills)
	fmt.Printf("Experience:     %s\n", profile.Experience)
	fmt.Printf("Projects:       %s\n", profile.Projects)
	fmt.Printf("Certifications: %s\n", profile.Certifications)
	fmt.Printf("Updated:        %s (version %s)\n",
		profile.LastUpdated.Local().Format("2006-01-02 15:04:05"), profile.ID)
}
